// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"github.com/granarylabs/granary/granary"
	"github.com/granarylabs/granary/state"
)

// Context binds a ledger module to its storage space:
// a holder address inside a world state.
type Context struct {
	address granary.Address
	state   *state.State
}

func NewContext(address granary.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() granary.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
