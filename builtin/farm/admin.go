// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"math/big"

	"github.com/granarylabs/granary/builtin/farm/reverts"
	"github.com/granarylabs/granary/granary"
)

func (f *Farm) requireAdmin(caller granary.Address) error {
	admin, err := f.store.admin().Get()
	if err != nil {
		return err
	}
	if caller != admin {
		return reverts.ErrUnauthorized
	}
	return nil
}

// AddPool registers a new pool for the given staked asset and returns
// its id. The pool starts dormant: its weight joins totalWeight only on
// first accrual with stake. Accrual never starts before
// max(now, emission start, startHint).
func (f *Farm) AddPool(caller, stakedAsset granary.Address, weight *big.Int, startHint uint64, depositTaxBps, subscriptionRateBps uint64, massUpdate bool, now uint64) (PoolID, error) {
	logger.Debug("add pool", "asset", stakedAsset, "weight", weight)
	var id PoolID
	err := f.runAtomic(func() error {
		if err := f.requireAdmin(caller); err != nil {
			return err
		}
		if weight == nil || weight.Sign() < 0 {
			return reverts.New("negative pool weight")
		}
		if depositTaxBps > granary.MaxDepositTaxBps || subscriptionRateBps > granary.MaxSubscriptionRateBps {
			return reverts.ErrFeeOutOfRange
		}
		registered, err := f.store.assetIndex().Get(stakedAsset)
		if err != nil {
			return err
		}
		if registered != 0 {
			return reverts.ErrDuplicateAsset
		}
		if massUpdate {
			if err := f.massUpdate(now); err != nil {
				return err
			}
		}
		sched, err := f.schedule()
		if err != nil {
			return err
		}
		lastAccrual := now
		if sched.Start > lastAccrual {
			lastAccrual = sched.Start
		}
		if startHint > lastAccrual {
			lastAccrual = startHint
		}

		count, err := f.store.poolCount().Get()
		if err != nil {
			return err
		}
		id = PoolID(count)
		pool := &Pool{
			StakedAsset:         stakedAsset,
			Weight:              new(big.Int).Set(weight),
			LastAccrual:         lastAccrual,
			AccPerShare:         new(big.Int),
			TotalStaked:         new(big.Int),
			DepositTaxBps:       depositTaxBps,
			SubscriptionRateBps: subscriptionRateBps,
		}
		if err := f.store.pools().Set(id, pool); err != nil {
			return err
		}
		if err := f.store.assetIndex().Set(stakedAsset, uint64(id)+1); err != nil {
			return err
		}
		f.store.poolCount().Set(count + 1)

		logger.Info("pool added", "pool", id, "asset", stakedAsset, "weight", weight, "lastAccrual", lastAccrual)
		return nil
	})
	return id, err
}

// SetPoolWeight changes a pool's allocation weight. A full accrual pass
// runs first so past intervals settle at the old weight; totalWeight is
// adjusted only if the pool is active.
func (f *Farm) SetPoolWeight(caller granary.Address, id PoolID, weight *big.Int, now uint64) error {
	return f.runAtomic(func() error {
		if err := f.requireAdmin(caller); err != nil {
			return err
		}
		if weight == nil || weight.Sign() < 0 {
			return reverts.New("negative pool weight")
		}
		if err := f.massUpdate(now); err != nil {
			return err
		}
		pool, err := f.getPool(id)
		if err != nil {
			return err
		}
		if pool.Active {
			if err := f.store.totalWeight().Sub(pool.Weight); err != nil {
				return err
			}
			if err := f.store.totalWeight().Add(weight); err != nil {
				return err
			}
		}
		pool.Weight = new(big.Int).Set(weight)
		if err := f.store.pools().Set(id, pool); err != nil {
			return err
		}

		logger.Info("pool weight set", "pool", id, "weight", weight)
		return nil
	})
}

// SetDepositTax is the bounds-checked setter of a pool's deposit tax.
func (f *Farm) SetDepositTax(caller granary.Address, id PoolID, bps uint64) error {
	return f.runAtomic(func() error {
		if err := f.requireAdmin(caller); err != nil {
			return err
		}
		if bps > granary.MaxDepositTaxBps {
			return reverts.ErrFeeOutOfRange
		}
		pool, err := f.getPool(id)
		if err != nil {
			return err
		}
		pool.DepositTaxBps = bps
		if err := f.store.pools().Set(id, pool); err != nil {
			return err
		}

		logger.Info("deposit tax set", "pool", id, "bps", bps)
		return nil
	})
}

// SetSubscriptionRate is the bounds-checked setter of a pool's weekly levy.
func (f *Farm) SetSubscriptionRate(caller granary.Address, id PoolID, bps uint64) error {
	return f.runAtomic(func() error {
		if err := f.requireAdmin(caller); err != nil {
			return err
		}
		if bps > granary.MaxSubscriptionRateBps {
			return reverts.ErrFeeOutOfRange
		}
		pool, err := f.getPool(id)
		if err != nil {
			return err
		}
		pool.SubscriptionRateBps = bps
		if err := f.store.pools().Set(id, pool); err != nil {
			return err
		}

		logger.Info("subscription rate set", "pool", id, "bps", bps)
		return nil
	})
}

// SetEmissionRate changes the per-second emission rate. A full accrual
// pass runs first so elapsed intervals settle at the old rate.
func (f *Farm) SetEmissionRate(caller granary.Address, ratePerSecond *big.Int, now uint64) error {
	return f.runAtomic(func() error {
		if err := f.requireAdmin(caller); err != nil {
			return err
		}
		if ratePerSecond == nil || ratePerSecond.Sign() < 0 {
			return reverts.New("negative emission rate")
		}
		if err := f.massUpdate(now); err != nil {
			return err
		}
		f.store.emissionRate().Set(ratePerSecond)

		logger.Info("emission rate set", "rate", ratePerSecond)
		return nil
	})
}

// SetFeeRecipient changes the destination of all collected fees.
func (f *Farm) SetFeeRecipient(caller, recipient granary.Address) error {
	return f.runAtomic(func() error {
		if err := f.requireAdmin(caller); err != nil {
			return err
		}
		f.store.feeRecipient().Set(&recipient)

		logger.Info("fee recipient set", "recipient", recipient)
		return nil
	})
}
