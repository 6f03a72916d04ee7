// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fees holds the pure fee curves: the decaying withdrawal tax
// and the periodic subscription levy. Both take only timestamps and
// rate parameters, and are recomputed fresh on every use.
package fees

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/granarylabs/granary/granary"
)

// Curve parameterizes the withdrawal tax decay:
// MaxBps at the day of deposit, minus StepBpsPerDay per elapsed full day,
// floored at MinBps. Linear, not exponential.
type Curve struct {
	MaxBps        uint64
	MinBps        uint64
	StepBpsPerDay uint64
}

// DefaultCurve is the production decay: 5% at day 0,
// -0.1%/day, floored at 2% from day 30 on.
var DefaultCurve = Curve{
	MaxBps:        500,
	MinBps:        200,
	StepBpsPerDay: 10,
}

// Validate rejects parameter sets whose decay arithmetic would wrap.
func (c Curve) Validate() error {
	if c.MinBps > c.MaxBps {
		return errors.New("fee curve: min rate above max")
	}
	if c.MaxBps > granary.BpsDenominator {
		return errors.New("fee curve: max rate above 100%")
	}
	return nil
}

// WithdrawalTaxBps returns the tax rate applicable to a withdrawal at
// time now for a position last deposited at depositTime.
func (c Curve) WithdrawalTaxBps(depositTime, now uint64) uint64 {
	if c.StepBpsPerDay == 0 || now <= depositTime {
		return c.MaxBps
	}
	days := (now - depositTime) / granary.SecondsPerDay
	decay := days * c.StepBpsPerDay
	if decay >= c.MaxBps-c.MinBps {
		return c.MinBps
	}
	return c.MaxBps - decay
}

// WeeksUnpaid returns the number of whole subscription periods elapsed
// since the levy was last settled.
func WeeksUnpaid(lastSettled, now uint64) uint64 {
	if now <= lastSettled {
		return 0
	}
	return (now - lastSettled) / granary.SubscriptionPeriod
}

// SubscriptionFee computes the levy for the given number of unpaid
// whole weeks: staked * rateBps / 10000 * weeks. Flat and
// non-compounding; it does not re-base on intermediate balance changes
// within the unpaid interval.
func SubscriptionFee(staked *big.Int, rateBps, weeks uint64) *big.Int {
	if weeks == 0 || rateBps == 0 || staked.Sign() <= 0 {
		return new(big.Int)
	}
	fee := new(big.Int).Mul(staked, new(big.Int).SetUint64(rateBps))
	fee.Div(fee, granary.BigBpsDenominator)
	return fee.Mul(fee, new(big.Int).SetUint64(weeks))
}

// Bps applies a basis-point rate to an amount: amount * bps / 10000.
func Bps(amount *big.Int, bps uint64) *big.Int {
	if bps == 0 || amount.Sign() <= 0 {
		return new(big.Int)
	}
	v := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	return v.Div(v, granary.BigBpsDenominator)
}
