// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package farm implements the time-weighted reward-accrual and staking
// ledger: weighted pools sharing a global emission, per-share
// accumulators with reward-debt checkpointing, and the
// deposit/withdraw/emergency-withdraw transitions with their fee logic.
//
// Every operation runs under a single lock and a state checkpoint:
// it either completes atomically or fails and leaves all state
// unchanged. Current time is an external input, never a local clock.
package farm

import (
	"math/big"
	"sync"

	"github.com/granarylabs/granary/builtin/farm/emission"
	"github.com/granarylabs/granary/builtin/farm/fees"
	"github.com/granarylabs/granary/builtin/farm/reverts"
	"github.com/granarylabs/granary/builtin/slot"
	"github.com/granarylabs/granary/builtin/token"
	"github.com/granarylabs/granary/granary"
	"github.com/granarylabs/granary/log"
	"github.com/granarylabs/granary/state"
)

var logger = log.WithContext("pkg", "farm")

// Disburser pays out accrued reward. Implementations may issue new
// supply unconditionally or transfer from a capped reserve; they return
// the amount actually paid, which may be less than requested.
type Disburser interface {
	Disburse(to granary.Address, amount *big.Int) (*big.Int, error)
}

// Farm is the staking ledger module.
type Farm struct {
	mu        sync.Mutex
	ctx       *slot.Context
	store     *store
	ledger    *token.Ledger
	disburser Disburser
	curve     fees.Curve
	recorder  Recorder
	queued    []*Event
}

// New creates the farm module bound to the given storage context.
// Staked assets are held in custody under the context address of the
// asset ledger.
func New(ctx *slot.Context, ledger *token.Ledger, disburser Disburser) *Farm {
	return &Farm{
		ctx:       ctx,
		store:     &store{ctx},
		ledger:    ledger,
		disburser: disburser,
		curve:     fees.DefaultCurve,
	}
}

// SetCurve overrides the default withdrawal tax decay curve.
func (f *Farm) SetCurve(curve fees.Curve) error {
	if err := curve.Validate(); err != nil {
		return err
	}
	f.curve = curve
	return nil
}

// OnEvent installs the domain event recorder.
func (f *Farm) OnEvent(recorder Recorder) {
	f.recorder = recorder
}

func (f *Farm) state() *state.State {
	return f.ctx.State()
}

// Commit flushes retained state changes to the backing store. It
// shares the operation lock, so a flush never interleaves with an
// in-flight operation or its checkpoint.
func (f *Farm) Commit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state().Commit()
}

// runAtomic executes fn under the operation lock and a checkpoint; on
// error all state changes and queued events are discarded.
func (f *Farm) runAtomic(fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	checkpoint := f.state().NewCheckpoint()
	if err := fn(); err != nil {
		f.state().RevertTo(checkpoint)
		f.queued = f.queued[:0]
		return err
	}
	f.flushEvents()
	f.observeGauges()
	return nil
}

// Initialize seeds admin, fee recipient and the emission schedule.
func (f *Farm) Initialize(admin, feeRecipient granary.Address, emissionStart, emissionEnd uint64, ratePerSecond *big.Int) error {
	return f.runAtomic(func() error {
		if _, err := emission.New(emissionStart, emissionEnd, ratePerSecond); err != nil {
			return err
		}
		f.store.admin().Set(&admin)
		f.store.feeRecipient().Set(&feeRecipient)
		f.store.emissionStart().Set(emissionStart)
		f.store.emissionEnd().Set(emissionEnd)
		f.store.emissionRate().Set(ratePerSecond)

		logger.Info("initialized", "admin", admin, "start", emissionStart, "end", emissionEnd, "rate", ratePerSecond)
		return nil
	})
}

func (f *Farm) schedule() (*emission.Schedule, error) {
	start, err := f.store.emissionStart().Get()
	if err != nil {
		return nil, err
	}
	end, err := f.store.emissionEnd().Get()
	if err != nil {
		return nil, err
	}
	rate, err := f.store.emissionRate().Get()
	if err != nil {
		return nil, err
	}
	return emission.New(start, end, rate)
}

// getPool loads a registered pool or fails with ErrUnknownPool.
func (f *Farm) getPool(id PoolID) (*Pool, error) {
	count, err := f.store.poolCount().Get()
	if err != nil {
		return nil, err
	}
	if uint64(id) >= count {
		return nil, reverts.ErrUnknownPool
	}
	pool, err := f.store.pools().Get(id)
	if err != nil {
		return nil, err
	}
	pool.normalize()
	return pool, nil
}

func (f *Farm) getPosition(id PoolID, addr granary.Address) (*Position, error) {
	pos, err := f.store.positions().Get(positionKey{id, addr})
	if err != nil {
		return nil, err
	}
	pos.normalize()
	return pos, nil
}

// pendingOf projects the unpaid reward of a position against an
// accumulator value: staked * accPerShare / SCALE - rewardDebt.
func pendingOf(pos *Position, accPerShare *big.Int) *big.Int {
	pending := new(big.Int).Mul(pos.Staked, accPerShare)
	pending.Div(pending, granary.AccrualScale)
	return pending.Sub(pending, pos.RewardDebt)
}

// checkpointDebt recomputes the reward debt after a stake mutation.
func checkpointDebt(pos *Position, accPerShare *big.Int) {
	debt := new(big.Int).Mul(pos.Staked, accPerShare)
	pos.RewardDebt = debt.Div(debt, granary.AccrualScale)
}

// claim pays the pending reward of a position, if any. The position
// must already reflect the current accumulator interval.
func (f *Farm) claim(id PoolID, account granary.Address, pos *Position, accPerShare *big.Int, now uint64) error {
	if pos.Staked.Sign() == 0 {
		return nil
	}
	pending := pendingOf(pos, accPerShare)
	if pending.Sign() <= 0 {
		return nil
	}
	paid, err := f.disburser.Disburse(account, pending)
	if err != nil {
		return err
	}
	f.emit(EventClaim, id, account, paid, now)
	return nil
}

// Deposit stakes amount of the pool's asset for the caller, paying out
// any pending reward first. A zero amount is a pure reward claim.
func (f *Farm) Deposit(caller granary.Address, id PoolID, amount *big.Int, now uint64) error {
	logger.Debug("deposit", "pool", id, "account", caller, "amount", amount)
	return f.runAtomic(func() error {
		pool, err := f.getPool(id)
		if err != nil {
			return err
		}
		if err := f.updatePool(id, pool, now); err != nil {
			return err
		}
		pos, err := f.getPosition(id, caller)
		if err != nil {
			return err
		}
		if err := f.claim(id, caller, pos, pool.AccPerShare, now); err != nil {
			return err
		}

		if amount.Sign() > 0 {
			tax := fees.Bps(amount, pool.DepositTaxBps)
			net := new(big.Int).Sub(amount, tax)

			custody := f.ctx.Address()
			if err := f.ledger.Transfer(pool.StakedAsset, caller, custody, net); err != nil {
				return err
			}
			if tax.Sign() > 0 {
				recipient, err := f.store.feeRecipient().Get()
				if err != nil {
					return err
				}
				if err := f.ledger.Transfer(pool.StakedAsset, caller, recipient, tax); err != nil {
					return err
				}
			}

			pos.Staked.Add(pos.Staked, net)
			pool.TotalStaked.Add(pool.TotalStaked, net)
			pos.DepositTime = now
			pos.LastSubscription = now
			if err := f.store.pools().Set(id, pool); err != nil {
				return err
			}
			f.emit(EventDeposit, id, caller, net, now)
		}

		checkpointDebt(pos, pool.AccPerShare)
		if err := f.store.positions().Set(positionKey{id, caller}, pos); err != nil {
			return err
		}

		logger.Info("deposited", "pool", id, "account", caller, "amount", amount, "staked", pos.Staked)
		return nil
	})
}

// Withdraw unstakes amount for the caller: pending reward is paid, any
// overdue subscription levy is settled first (reducing both the stake
// and the requested amount), and the remainder leaves custody net of
// the decaying withdrawal tax.
func (f *Farm) Withdraw(caller granary.Address, id PoolID, amount *big.Int, now uint64) error {
	logger.Debug("withdraw", "pool", id, "account", caller, "amount", amount)
	return f.runAtomic(func() error {
		pool, err := f.getPool(id)
		if err != nil {
			return err
		}
		pos, err := f.getPosition(id, caller)
		if err != nil {
			return err
		}
		if amount.Sign() < 0 || amount.Cmp(pos.Staked) > 0 {
			return reverts.ErrInsufficientBalance
		}
		if err := f.updatePool(id, pool, now); err != nil {
			return err
		}

		// pending is computed against the stake before the levy
		pending := pendingOf(pos, pool.AccPerShare)

		amount = new(big.Int).Set(amount)
		custody := f.ctx.Address()
		recipient, err := f.store.feeRecipient().Get()
		if err != nil {
			return err
		}

		if weeks := fees.WeeksUnpaid(pos.LastSubscription, now); weeks > 0 && pool.SubscriptionRateBps > 0 {
			fee := fees.SubscriptionFee(pos.Staked, pool.SubscriptionRateBps, weeks)
			if fee.Cmp(pos.Staked) > 0 {
				fee.Set(pos.Staked)
			}
			if err := f.ledger.Transfer(pool.StakedAsset, custody, recipient, fee); err != nil {
				return err
			}
			pos.Staked.Sub(pos.Staked, fee)
			pool.TotalStaked.Sub(pool.TotalStaked, fee)
			if amount.Sub(amount, fee).Sign() < 0 {
				amount.SetUint64(0)
			}
			pos.LastSubscription += weeks * granary.SubscriptionPeriod
			f.emit(EventSubscription, id, caller, fee, now)
		}

		if pending.Sign() > 0 {
			paid, err := f.disburser.Disburse(caller, pending)
			if err != nil {
				return err
			}
			f.emit(EventClaim, id, caller, paid, now)
		}

		if amount.Sign() > 0 {
			payout := new(big.Int).Set(amount)
			if pool.DepositTaxBps > 0 {
				rate := f.curve.WithdrawalTaxBps(pos.DepositTime, now)
				tax := fees.Bps(amount, rate)
				if tax.Sign() > 0 {
					if err := f.ledger.Transfer(pool.StakedAsset, custody, recipient, tax); err != nil {
						return err
					}
					payout.Sub(payout, tax)
				}
			}
			if err := f.ledger.Transfer(pool.StakedAsset, custody, caller, payout); err != nil {
				return err
			}
			pos.Staked.Sub(pos.Staked, amount)
			pool.TotalStaked.Sub(pool.TotalStaked, amount)
			f.emit(EventWithdraw, id, caller, amount, now)
		}

		checkpointDebt(pos, pool.AccPerShare)
		if err := f.store.pools().Set(id, pool); err != nil {
			return err
		}
		if err := f.store.positions().Set(positionKey{id, caller}, pos); err != nil {
			return err
		}

		logger.Info("withdrawn", "pool", id, "account", caller, "amount", amount, "staked", pos.Staked)
		return nil
	})
}

// EmergencyWithdraw returns the full stake bypassing accrual and fee
// logic; any pending reward is forfeited. Pool 0 is protected and
// refuses the operation.
func (f *Farm) EmergencyWithdraw(caller granary.Address, id PoolID, now uint64) error {
	logger.Debug("emergency withdraw", "pool", id, "account", caller)
	return f.runAtomic(func() error {
		if id == 0 {
			return reverts.ErrProtectedPool
		}
		pool, err := f.getPool(id)
		if err != nil {
			return err
		}
		pos, err := f.getPosition(id, caller)
		if err != nil {
			return err
		}

		amount := new(big.Int).Set(pos.Staked)
		if err := f.ledger.Transfer(pool.StakedAsset, f.ctx.Address(), caller, amount); err != nil {
			return err
		}

		// zero the record; timestamps persist for audit
		pos.Staked = new(big.Int)
		pos.RewardDebt = new(big.Int)
		pool.TotalStaked.Sub(pool.TotalStaked, amount)

		if err := f.store.pools().Set(id, pool); err != nil {
			return err
		}
		if err := f.store.positions().Set(positionKey{id, caller}, pos); err != nil {
			return err
		}
		f.emit(EventEmergencyWithdraw, id, caller, amount, now)

		logger.Info("emergency withdrawn", "pool", id, "account", caller, "amount", amount)
		return nil
	})
}
