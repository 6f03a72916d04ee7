// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"github.com/granarylabs/granary/granary"
)

// updatePool brings one pool's accumulator current. The pool record is
// mutated in place and written back.
//
// A dormant pool activates on its first accrual with non-zero staked
// supply; only then does its weight join totalWeight. Reward
// attributable to an interval with zero staked supply is not banked
// anywhere: it is permanently lost from the pool's distribution.
func (f *Farm) updatePool(id PoolID, pool *Pool, now uint64) error {
	if now <= pool.LastAccrual {
		return nil
	}
	if pool.TotalStaked.Sign() == 0 {
		pool.LastAccrual = now
		return f.store.pools().Set(id, pool)
	}
	if !pool.Active {
		pool.Active = true
		if err := f.store.totalWeight().Add(pool.Weight); err != nil {
			return err
		}
	}
	totalWeight, err := f.store.totalWeight().Get()
	if err != nil {
		return err
	}
	if totalWeight.Sign() > 0 {
		sched, err := f.schedule()
		if err != nil {
			return err
		}
		reward := sched.GeneratedReward(pool.LastAccrual, now)
		reward.Mul(reward, pool.Weight)
		reward.Div(reward, totalWeight)

		delta := reward.Mul(reward, granary.AccrualScale)
		delta.Div(delta, pool.TotalStaked)
		pool.AccPerShare.Add(pool.AccPerShare, delta)
	}
	pool.LastAccrual = now
	return f.store.pools().Set(id, pool)
}

func (f *Farm) massUpdate(now uint64) error {
	count, err := f.store.poolCount().Get()
	if err != nil {
		return err
	}
	for i := uint64(0); i < count; i++ {
		pool, err := f.getPool(PoolID(i))
		if err != nil {
			return err
		}
		if err := f.updatePool(PoolID(i), pool, now); err != nil {
			return err
		}
	}
	return nil
}

// UpdatePool accrues a single pool up to now.
func (f *Farm) UpdatePool(id PoolID, now uint64) error {
	return f.runAtomic(func() error {
		pool, err := f.getPool(id)
		if err != nil {
			return err
		}
		return f.updatePool(id, pool, now)
	})
}

// MassUpdate accrues every registered pool up to now.
func (f *Farm) MassUpdate(now uint64) error {
	return f.runAtomic(func() error {
		return f.massUpdate(now)
	})
}
