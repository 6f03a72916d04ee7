// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"math/big"

	"github.com/granarylabs/granary/granary"
)

// Domain event names emitted by the staking operations.
const (
	EventDeposit           = "deposit"
	EventWithdraw          = "withdraw"
	EventEmergencyWithdraw = "emergency-withdraw"
	EventClaim             = "claim"
	EventSubscription      = "subscription"
)

// Event is one domain event of the staking ledger.
type Event struct {
	Name    string
	Pool    uint32
	Account granary.Address
	Amount  *big.Int
	Time    uint64
}

// Recorder persists domain events. Recording is observability, not
// accounting: a failed record does not fail the operation.
type Recorder interface {
	Record(ev *Event) error
}

// emit queues an event for flushing once the operation has succeeded.
func (f *Farm) emit(name string, id PoolID, account granary.Address, amount *big.Int, now uint64) {
	if f.recorder == nil {
		return
	}
	f.queued = append(f.queued, &Event{
		Name:    name,
		Pool:    uint32(id),
		Account: account,
		Amount:  new(big.Int).Set(amount),
		Time:    now,
	})
}

func (f *Farm) flushEvents() {
	for _, ev := range f.queued {
		metricEventCounter().AddWithLabel(1, map[string]string{"name": ev.Name})
		if err := f.recorder.Record(ev); err != nil {
			logger.Warn("failed to record event", "name", ev.Name, "pool", ev.Pool, "err", err)
		}
	}
	f.queued = f.queued[:0]
}
