// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsRevertErr(t *testing.T) {
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(errors.New("plain")))
	assert.False(t, IsRevertErr("not an error"))

	assert.True(t, IsRevertErr(ErrInsufficientBalance))
	assert.True(t, IsRevertErr(New("custom rule")))

	// wrapping keeps the revert classification
	wrapped := errors.Wrap(ErrProtectedPool, "emergency withdraw")
	assert.True(t, IsRevertErr(wrapped))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "duplicate asset", ErrDuplicateAsset.Error())
	assert.Equal(t, "unauthorized", ErrUnauthorized.Error())
}
