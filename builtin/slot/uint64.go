// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"math/big"

	"github.com/granarylabs/granary/granary"
)

// Uint64 is a wrapper for storage and retrieval of an uint64 counter.
type Uint64 struct {
	inner *Uint256
}

func NewUint64(context *Context, pos granary.Bytes32) *Uint64 {
	return &Uint64{inner: NewUint256(context, pos)}
}

func (u *Uint64) Get() (uint64, error) {
	value, err := u.inner.Get()
	if err != nil {
		return 0, err
	}
	return value.Uint64(), nil
}

func (u *Uint64) Set(value uint64) {
	u.inner.Set(new(big.Int).SetUint64(value))
}
