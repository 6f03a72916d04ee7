// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"math"
	"math/big"

	"github.com/granarylabs/granary/metrics"
)

var (
	metricEventCounter     = metrics.LazyLoadCounterVec("farm_event_count", []string{"name"})
	metricPoolCountGauge   = metrics.LazyLoadGauge("farm_pool_count")
	metricTotalWeightGauge = metrics.LazyLoadGauge("farm_total_weight")
)

// gaugeValue clamps a non-negative big value to the int64 range of a
// gauge instead of truncating it.
func gaugeValue(v *big.Int) int64 {
	if !v.IsInt64() {
		return math.MaxInt64
	}
	return v.Int64()
}

// observeGauges refreshes the registry-level gauges after a successful
// operation. Failures here never affect the operation outcome.
func (f *Farm) observeGauges() {
	if count, err := f.store.poolCount().Get(); err == nil {
		metricPoolCountGauge().Set(int64(count))
	}
	if weight, err := f.store.totalWeight().Get(); err == nil {
		metricTotalWeightGauge().Set(gaugeValue(weight))
	}
}
