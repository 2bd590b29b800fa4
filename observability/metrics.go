package observability

import (
	"math"
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type ghoMetrics struct {
	mints        prometheus.Counter
	burns        prometheus.Counter
	mintVolume   prometheus.Counter
	burnVolume   prometheus.Counter
	bucketLevels *prometheus.GaugeVec
}

type debtMetrics struct {
	accruals   prometheus.Counter
	rebalances prometheus.Counter
	discounts  prometheus.Histogram
}

var (
	ghoMetricsOnce sync.Once
	ghoRegistry    *ghoMetrics

	debtMetricsOnce sync.Once
	debtRegistry    *debtMetrics
)

// GhoMetrics returns the lazily-initialised registry tracking stablecoin
// issuance activity.
func GhoMetrics() *ghoMetrics {
	ghoMetricsOnce.Do(func() {
		ghoRegistry = &ghoMetrics{
			mints: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "gho",
				Subsystem: "ledger",
				Name:      "mints_total",
				Help:      "Count of successful facilitator mints.",
			}),
			burns: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "gho",
				Subsystem: "ledger",
				Name:      "burns_total",
				Help:      "Count of successful facilitator burns.",
			}),
			mintVolume: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "gho",
				Subsystem: "ledger",
				Name:      "mint_volume_wei",
				Help:      "Cumulative minted stablecoin volume in wei.",
			}),
			burnVolume: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "gho",
				Subsystem: "ledger",
				Name:      "burn_volume_wei",
				Help:      "Cumulative burned stablecoin volume in wei.",
			}),
			bucketLevels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "gho",
				Subsystem: "ledger",
				Name:      "bucket_level_wei",
				Help:      "Current bucket level per facilitator in wei.",
			}, []string{"facilitator"}),
		}
		prometheus.MustRegister(
			ghoRegistry.mints,
			ghoRegistry.burns,
			ghoRegistry.mintVolume,
			ghoRegistry.burnVolume,
			ghoRegistry.bucketLevels,
		)
	})
	return ghoRegistry
}

// RecordMint tracks a completed mint of the given wei amount.
func (m *ghoMetrics) RecordMint(amount *big.Int) {
	if m == nil {
		return
	}
	m.mints.Inc()
	m.mintVolume.Add(approximateWei(amount))
}

// RecordBurn tracks a completed burn of the given wei amount.
func (m *ghoMetrics) RecordBurn(amount *big.Int) {
	if m == nil {
		return
	}
	m.burns.Inc()
	m.burnVolume.Add(approximateWei(amount))
}

// SetBucketLevel records the facilitator's bucket level after a mint or burn.
func (m *ghoMetrics) SetBucketLevel(facilitator string, level *big.Int) {
	if m == nil {
		return
	}
	m.bucketLevels.WithLabelValues(facilitator).Set(approximateWei(level))
}

// DebtMetrics returns the lazily-initialised registry tracking debt engine
// activity.
func DebtMetrics() *debtMetrics {
	debtMetricsOnce.Do(func() {
		debtRegistry = &debtMetrics{
			accruals: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "gho",
				Subsystem: "debt",
				Name:      "accruals_total",
				Help:      "Count of debt accrual actions (mint, burn, rebalance).",
			}),
			rebalances: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "gho",
				Subsystem: "debt",
				Name:      "rebalances_total",
				Help:      "Count of externally triggered discount rebalances.",
			}),
			discounts: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: "gho",
				Subsystem: "debt",
				Name:      "discount_percent_bps",
				Help:      "Distribution of discount percents applied to users.",
				Buckets:   prometheus.LinearBuckets(0, 1000, 11),
			}),
		}
		prometheus.MustRegister(
			debtRegistry.accruals,
			debtRegistry.rebalances,
			debtRegistry.discounts,
		)
	})
	return debtRegistry
}

// RecordAccrual tracks a debt accrual action.
func (m *debtMetrics) RecordAccrual() {
	if m == nil {
		return
	}
	m.accruals.Inc()
}

// RecordRebalance tracks an external discount rebalance.
func (m *debtMetrics) RecordRebalance() {
	if m == nil {
		return
	}
	m.rebalances.Inc()
}

// ObserveDiscount tracks the discount percent applied to a user.
func (m *debtMetrics) ObserveDiscount(bps uint64) {
	if m == nil {
		return
	}
	m.discounts.Observe(float64(bps))
}

// approximateWei converts the amount to a float for counter purposes. Metrics
// tolerate the precision loss; exact accounting lives in state.
func approximateWei(amount *big.Int) float64 {
	if amount == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(amount).Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}
