// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"math/big"

	"github.com/granarylabs/granary/builtin/farm/emission"
	"github.com/granarylabs/granary/builtin/farm/fees"
	"github.com/granarylabs/granary/granary"
)

// PendingReward projects the unpaid reward of a position at time now,
// without mutating state. The projection simulates the accrual the next
// authoritative update would perform, including lazy activation.
func (f *Farm) PendingReward(id PoolID, account granary.Address, now uint64) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pool, err := f.getPool(id)
	if err != nil {
		return nil, err
	}
	pos, err := f.getPosition(id, account)
	if err != nil {
		return nil, err
	}

	accPerShare := new(big.Int).Set(pool.AccPerShare)
	if now > pool.LastAccrual && pool.TotalStaked.Sign() > 0 {
		totalWeight, err := f.store.totalWeight().Get()
		if err != nil {
			return nil, err
		}
		if !pool.Active {
			totalWeight.Add(totalWeight, pool.Weight)
		}
		if totalWeight.Sign() > 0 {
			sched, err := f.schedule()
			if err != nil {
				return nil, err
			}
			reward := sched.GeneratedReward(pool.LastAccrual, now)
			reward.Mul(reward, pool.Weight)
			reward.Div(reward, totalWeight)
			reward.Mul(reward, granary.AccrualScale)
			accPerShare.Add(accPerShare, reward.Div(reward, pool.TotalStaked))
		}
	}

	pending := pendingOf(pos, accPerShare)
	if pending.Sign() < 0 {
		pending.SetUint64(0)
	}
	return pending, nil
}

// PoolInfo returns a copy of the pool record.
func (f *Farm) PoolInfo(id PoolID) (*Pool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getPool(id)
}

// GetPosition returns a copy of the (pool, account) ledger entry.
// Never-written positions read as zero values.
func (f *Farm) GetPosition(id PoolID, account granary.Address) (*Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.getPool(id); err != nil {
		return nil, err
	}
	return f.getPosition(id, account)
}

// PoolCount returns the number of registered pools.
func (f *Farm) PoolCount() (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.poolCount().Get()
}

// TotalWeight returns the weight sum over active pools.
func (f *Farm) TotalWeight() (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.totalWeight().Get()
}

// UnpaidSubscriptionWeeks returns the whole levy periods outstanding
// for the account's position at time now.
func (f *Farm) UnpaidSubscriptionWeeks(id PoolID, account granary.Address, now uint64) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.getPool(id); err != nil {
		return 0, err
	}
	pos, err := f.getPosition(id, account)
	if err != nil {
		return 0, err
	}
	if pos.Staked.Sign() == 0 {
		return 0, nil
	}
	return fees.WeeksUnpaid(pos.LastSubscription, now), nil
}

// Schedule returns the current emission schedule.
func (f *Farm) Schedule() (*emission.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.schedule()
}

// FeeRecipient returns the destination of collected fees.
func (f *Farm) FeeRecipient() (granary.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.feeRecipient().Get()
}

// Admin returns the administrative account.
func (f *Farm) Admin() (granary.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.admin().Get()
}
