// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"github.com/granarylabs/granary/builtin/slot"
	"github.com/granarylabs/granary/granary"
)

// Storage slot layout of the farm module. Base positions are derived
// from fixed labels; mapping entries hash their key against the base.
var (
	slotAdmin        = granary.Blake2b([]byte("admin"))
	slotFeeRecipient = granary.Blake2b([]byte("fee-recipient"))

	slotEmissionStart = granary.Blake2b([]byte("emission-start"))
	slotEmissionEnd   = granary.Blake2b([]byte("emission-end"))
	slotEmissionRate  = granary.Blake2b([]byte("emission-rate"))

	slotPoolCount   = granary.Blake2b([]byte("pool-count"))
	slotTotalWeight = granary.Blake2b([]byte("total-weight"))
	slotPools       = granary.Blake2b([]byte("pools"))
	slotAssetIndex  = granary.Blake2b([]byte("asset-index"))
	slotPositions   = granary.Blake2b([]byte("positions"))
)

// store gives typed access to the module's storage cells.
type store struct {
	ctx *slot.Context
}

func (s *store) admin() *slot.Address {
	return slot.NewAddress(s.ctx, slotAdmin)
}

func (s *store) feeRecipient() *slot.Address {
	return slot.NewAddress(s.ctx, slotFeeRecipient)
}

func (s *store) emissionStart() *slot.Uint64 {
	return slot.NewUint64(s.ctx, slotEmissionStart)
}

func (s *store) emissionEnd() *slot.Uint64 {
	return slot.NewUint64(s.ctx, slotEmissionEnd)
}

func (s *store) emissionRate() *slot.Uint256 {
	return slot.NewUint256(s.ctx, slotEmissionRate)
}

func (s *store) poolCount() *slot.Uint64 {
	return slot.NewUint64(s.ctx, slotPoolCount)
}

func (s *store) totalWeight() *slot.Uint256 {
	return slot.NewUint256(s.ctx, slotTotalWeight)
}

func (s *store) pools() *slot.Mapping[PoolID, *Pool] {
	return slot.NewMapping[PoolID, *Pool](s.ctx, slotPools)
}

// assetIndex maps a staked asset to poolID+1; zero means unregistered.
func (s *store) assetIndex() *slot.Mapping[granary.Address, uint64] {
	return slot.NewMapping[granary.Address, uint64](s.ctx, slotAssetIndex)
}

func (s *store) positions() *slot.Mapping[positionKey, *Position] {
	return slot.NewMapping[positionKey, *Position](s.ctx, slotPositions)
}
