// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"github.com/granarylabs/granary/granary"
)

// Address is a wrapper for storage and retrieval of an address,
// similar to storing an address in a smart contract.
type Address struct {
	context *Context
	pos     granary.Bytes32
}

func NewAddress(context *Context, pos granary.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (granary.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return granary.Address{}, err
	}
	return granary.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr *granary.Address) {
	var storage granary.Bytes32
	if addr != nil {
		storage = granary.BytesToBytes32(addr.Bytes())
	}
	a.context.state.SetStorage(a.context.address, a.pos, storage)
}
