// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package emission implements the global reward emission schedule:
// a fixed per-second rate over a fixed time window, zero outside it.
package emission

import (
	"math/big"

	"github.com/pkg/errors"
)

// Schedule describes the emission window and rate.
// It is a pure value; the same arithmetic backs both authoritative
// accrual and read-only pending-reward projections.
type Schedule struct {
	Start uint64   // unix seconds, inclusive
	End   uint64   // unix seconds, exclusive upper clamp
	Rate  *big.Int // reward base units generated per second
}

// New validates and creates a schedule.
func New(start, end uint64, rate *big.Int) (*Schedule, error) {
	if end < start {
		return nil, errors.New("emission end before start")
	}
	if rate == nil || rate.Sign() < 0 {
		return nil, errors.New("negative emission rate")
	}
	return &Schedule{Start: start, End: end, Rate: rate}, nil
}

// GeneratedReward returns the reward generated over (from, to],
// clamped to the active window. Strictly linear, no compounding.
// Returns 0 for from >= to and for intervals fully outside the window.
func (s *Schedule) GeneratedReward(from, to uint64) *big.Int {
	if from >= to {
		return new(big.Int)
	}
	if from < s.Start {
		from = s.Start
	}
	if to > s.End {
		to = s.End
	}
	if from >= to {
		return new(big.Int)
	}
	duration := new(big.Int).SetUint64(to - from)
	return duration.Mul(duration, s.Rate)
}

// TotalBudget returns rate * (end - start), the upper bound of
// disbursed reward. Intervals accrued while a pool had zero staked
// supply are permanently lost, so actual disbursement may be lower.
func (s *Schedule) TotalBudget() *big.Int {
	duration := new(big.Int).SetUint64(s.End - s.Start)
	return duration.Mul(duration, s.Rate)
}
