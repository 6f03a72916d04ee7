// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/granarylabs/granary/builtin/farm"
	"github.com/granarylabs/granary/granary"
)

// Pool is the JSON projection of a pool record.
type Pool struct {
	ID                  uint32                `json:"id"`
	StakedAsset         granary.Address       `json:"stakedAsset"`
	Weight              *math.HexOrDecimal256 `json:"weight"`
	LastAccrual         uint64                `json:"lastAccrual"`
	AccPerShare         *math.HexOrDecimal256 `json:"accPerShare"`
	TotalStaked         *math.HexOrDecimal256 `json:"totalStaked"`
	Active              bool                  `json:"active"`
	DepositTaxBps       uint64                `json:"depositTaxBps"`
	SubscriptionRateBps uint64                `json:"subscriptionRateBps"`
}

func convertPool(id farm.PoolID, p *farm.Pool) *Pool {
	return &Pool{
		ID:                  uint32(id),
		StakedAsset:         p.StakedAsset,
		Weight:              (*math.HexOrDecimal256)(p.Weight),
		LastAccrual:         p.LastAccrual,
		AccPerShare:         (*math.HexOrDecimal256)(p.AccPerShare),
		TotalStaked:         (*math.HexOrDecimal256)(p.TotalStaked),
		Active:              p.Active,
		DepositTaxBps:       p.DepositTaxBps,
		SubscriptionRateBps: p.SubscriptionRateBps,
	}
}

// Position is the JSON projection of a position record.
type Position struct {
	Staked           *math.HexOrDecimal256 `json:"staked"`
	RewardDebt       *math.HexOrDecimal256 `json:"rewardDebt"`
	DepositTime      uint64                `json:"depositTime"`
	LastSubscription uint64                `json:"lastSubscription"`
}

func convertPosition(p *farm.Position) *Position {
	return &Position{
		Staked:           (*math.HexOrDecimal256)(p.Staked),
		RewardDebt:       (*math.HexOrDecimal256)(p.RewardDebt),
		DepositTime:      p.DepositTime,
		LastSubscription: p.LastSubscription,
	}
}

// Overview is the global farm state.
type Overview struct {
	PoolCount     uint64                `json:"poolCount"`
	TotalWeight   *math.HexOrDecimal256 `json:"totalWeight"`
	EmissionStart uint64                `json:"emissionStart"`
	EmissionEnd   uint64                `json:"emissionEnd"`
	EmissionRate  *math.HexOrDecimal256 `json:"emissionRate"`
	TotalBudget   *math.HexOrDecimal256 `json:"totalBudget"`
	FeeRecipient  granary.Address       `json:"feeRecipient"`
}

// AddPoolBody is the request body of pool creation.
type AddPoolBody struct {
	Caller              granary.Address       `json:"caller"`
	StakedAsset         granary.Address       `json:"stakedAsset"`
	Weight              *math.HexOrDecimal256 `json:"weight"`
	StartHint           uint64                `json:"startHint"`
	DepositTaxBps       uint64                `json:"depositTaxBps"`
	SubscriptionRateBps uint64                `json:"subscriptionRateBps"`
	MassUpdate          bool                  `json:"massUpdate"`
}

// AmountBody is the request body of deposit and withdraw.
type AmountBody struct {
	Caller granary.Address       `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// CallerBody is the request body of operations taking no other input.
type CallerBody struct {
	Caller granary.Address `json:"caller"`
}

// WeightBody is the request body of weight changes.
type WeightBody struct {
	Caller granary.Address       `json:"caller"`
	Weight *math.HexOrDecimal256 `json:"weight"`
}

// BpsBody is the request body of the fee setters.
type BpsBody struct {
	Caller granary.Address `json:"caller"`
	Bps    uint64          `json:"bps"`
}

// RateBody is the request body of emission rate changes.
type RateBody struct {
	Caller        granary.Address       `json:"caller"`
	RatePerSecond *math.HexOrDecimal256 `json:"ratePerSecond"`
}

// RecipientBody is the request body of fee recipient changes.
type RecipientBody struct {
	Caller    granary.Address `json:"caller"`
	Recipient granary.Address `json:"recipient"`
}

func toBig(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return (*big.Int)(v)
}

func toDecimal(v *big.Int) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(v)
}
