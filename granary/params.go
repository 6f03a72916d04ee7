// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package granary

import "math/big"

// Constants of the staking ledger.
const (
	// SecondsPerDay drives the withdrawal tax decay granularity.
	SecondsPerDay uint64 = 24 * 60 * 60

	// SubscriptionPeriod length of one subscription levy period.
	SubscriptionPeriod uint64 = 7 * SecondsPerDay

	// BpsDenominator basis point denominator for all fee math.
	BpsDenominator uint64 = 10000

	// MaxDepositTaxBps upper bound of the per-pool deposit tax (4%).
	MaxDepositTaxBps uint64 = 400

	// MaxSubscriptionRateBps upper bound of the weekly subscription levy (10%).
	MaxSubscriptionRateBps uint64 = 1000
)

var (
	// AccrualScale fixed-point scale of per-share accumulators (1e18).
	AccrualScale = big.NewInt(1e18)

	// BigBpsDenominator BpsDenominator as big.Int for fee arithmetic.
	BigBpsDenominator = new(big.Int).SetUint64(BpsDenominator)

	// LedgerModuleAddress storage space of the asset ledger.
	LedgerModuleAddress = BytesToAddress([]byte("granary-asset-ledger"))

	// FarmModuleAddress storage space and asset custody of the farm.
	FarmModuleAddress = BytesToAddress([]byte("granary-farm"))
)
