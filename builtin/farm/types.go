// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"encoding/binary"
	"math/big"

	"github.com/granarylabs/granary/granary"
)

// PoolID indexes a pool in the registry. IDs are assigned densely in
// creation order; pool 0 is reserved for the highest-priority asset and
// refuses emergency withdrawal.
type PoolID uint32

func (id PoolID) Bytes() []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(id))
	return b[:]
}

// Pool is one weighted bucket of the registry.
type Pool struct {
	StakedAsset         granary.Address
	Weight              *big.Int
	LastAccrual         uint64
	AccPerShare         *big.Int
	TotalStaked         *big.Int
	Active              bool
	DepositTaxBps       uint64
	SubscriptionRateBps uint64
}

// normalize fills nil big integers of a never-written record so callers
// can use the zero pool without presence checks.
func (p *Pool) normalize() {
	if p.Weight == nil {
		p.Weight = new(big.Int)
	}
	if p.AccPerShare == nil {
		p.AccPerShare = new(big.Int)
	}
	if p.TotalStaked == nil {
		p.TotalStaked = new(big.Int)
	}
}

// Position is the per (pool, account) ledger entry. A position always
// exists with zero values; full exits zero it but never delete it, so
// the timestamps persist for audit.
type Position struct {
	Staked           *big.Int
	RewardDebt       *big.Int
	DepositTime      uint64
	LastSubscription uint64
}

func (p *Position) normalize() {
	if p.Staked == nil {
		p.Staked = new(big.Int)
	}
	if p.RewardDebt == nil {
		p.RewardDebt = new(big.Int)
	}
}

// positionKey addresses one position inside the positions mapping.
type positionKey struct {
	id   PoolID
	addr granary.Address
}

func (k positionKey) Bytes() []byte {
	b := make([]byte, 0, 4+granary.AddressLength)
	b = append(b, k.id.Bytes()...)
	return append(b, k.addr.Bytes()...)
}
