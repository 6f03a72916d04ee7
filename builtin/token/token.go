// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the fungible asset ledger the staking engine
// transfers through. Balances are keyed by (asset, holder) inside the
// ledger module's storage space.
package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/granarylabs/granary/builtin/farm/reverts"
	"github.com/granarylabs/granary/granary"
	"github.com/granarylabs/granary/state"
)

func balanceKey(asset, holder granary.Address) granary.Bytes32 {
	return granary.Bytes32(crypto.Keccak256Hash([]byte("balance"), asset.Bytes(), holder.Bytes()))
}

func supplyKey(asset granary.Address) granary.Bytes32 {
	return granary.Bytes32(crypto.Keccak256Hash([]byte("total-supply"), asset.Bytes()))
}

// Ledger tracks balances of any number of fungible assets.
type Ledger struct {
	addr  granary.Address
	state *state.State
}

// New create a ledger bound to the given module address.
func New(addr granary.Address, state *state.State) *Ledger {
	return &Ledger{addr, state}
}

func (l *Ledger) getAmount(key granary.Bytes32) (*big.Int, error) {
	storage, err := l.state.GetStorage(l.addr, key)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (l *Ledger) setAmount(key granary.Bytes32, amount *big.Int) {
	l.state.SetStorage(l.addr, key, granary.BytesToBytes32(amount.Bytes()))
}

// BalanceOf returns the holder's balance of the given asset.
func (l *Ledger) BalanceOf(asset, holder granary.Address) (*big.Int, error) {
	return l.getAmount(balanceKey(asset, holder))
}

// TotalSupply returns the minted supply of the given asset.
func (l *Ledger) TotalSupply(asset granary.Address) (*big.Int, error) {
	return l.getAmount(supplyKey(asset))
}

// Mint issues new supply of asset to the given holder.
func (l *Ledger) Mint(asset, to granary.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := l.BalanceOf(asset, to)
	if err != nil {
		return err
	}
	l.setAmount(balanceKey(asset, to), bal.Add(bal, amount))

	supply, err := l.TotalSupply(asset)
	if err != nil {
		return err
	}
	l.setAmount(supplyKey(asset), supply.Add(supply, amount))
	return nil
}

// Transfer moves amount of asset between holders.
// Fails with reverts.ErrInsufficientFunds if the source lacks balance.
func (l *Ledger) Transfer(asset, from, to granary.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	fromBal, err := l.BalanceOf(asset, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return reverts.ErrInsufficientFunds
	}
	toBal, err := l.BalanceOf(asset, to)
	if err != nil {
		return err
	}
	l.setAmount(balanceKey(asset, from), fromBal.Sub(fromBal, amount))
	l.setAmount(balanceKey(asset, to), toBal.Add(toBal, amount))
	return nil
}
