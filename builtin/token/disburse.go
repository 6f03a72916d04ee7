// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/granarylabs/granary/granary"
)

// Minter disburses reward by issuing new supply. Payment is
// unconditional and always equals the requested amount.
type Minter struct {
	ledger *Ledger
	asset  granary.Address
}

func NewMinter(ledger *Ledger, asset granary.Address) *Minter {
	return &Minter{ledger: ledger, asset: asset}
}

func (m *Minter) Disburse(to granary.Address, amount *big.Int) (*big.Int, error) {
	if amount.Sign() <= 0 {
		return new(big.Int), nil
	}
	if err := m.ledger.Mint(m.asset, to, amount); err != nil {
		return nil, err
	}
	return new(big.Int).Set(amount), nil
}

// Reserve disburses reward by transferring from a pre-funded reserve
// account, capped at the reserve's balance. A shortfall is not an
// error: it silently pays less than owed, and the difference is not
// tracked for later payment.
type Reserve struct {
	ledger  *Ledger
	asset   granary.Address
	reserve granary.Address
}

func NewReserve(ledger *Ledger, asset, reserve granary.Address) *Reserve {
	return &Reserve{ledger: ledger, asset: asset, reserve: reserve}
}

func (r *Reserve) Disburse(to granary.Address, amount *big.Int) (*big.Int, error) {
	if amount.Sign() <= 0 {
		return new(big.Int), nil
	}
	available, err := r.ledger.BalanceOf(r.asset, r.reserve)
	if err != nil {
		return nil, err
	}
	pay := new(big.Int).Set(amount)
	if available.Cmp(pay) < 0 {
		pay.Set(available)
	}
	if pay.Sign() > 0 {
		if err := r.ledger.Transfer(r.asset, r.reserve, to, pay); err != nil {
			return nil, err
		}
	}
	return pay, nil
}
