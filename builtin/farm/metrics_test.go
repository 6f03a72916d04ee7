// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGaugeValueClamped(t *testing.T) {
	assert.Equal(t, int64(0), gaugeValue(new(big.Int)))
	assert.Equal(t, int64(42), gaugeValue(big.NewInt(42)))
	assert.Equal(t, int64(math.MaxInt64), gaugeValue(big.NewInt(math.MaxInt64)))

	huge := new(big.Int).Lsh(big.NewInt(1), 80)
	assert.Equal(t, int64(math.MaxInt64), gaugeValue(huge))
}
