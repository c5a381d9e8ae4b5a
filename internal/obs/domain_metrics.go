package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteTotal counts quote computations by outcome.
	QuoteTotal *prometheus.CounterVec
	// TenderReconciliationTotal counts tender reconciliations by status.
	TenderReconciliationTotal *prometheus.CounterVec
	// CurrencyConversionTotal counts currency conversions by direction and outcome.
	CurrencyConversionTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers the domain counters.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Count of sale quote computations by result.",
		}, []string{"result"})
		TenderReconciliationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tender_reconciliations_total",
			Help:      "Count of tender reconciliations by status.",
		}, []string{"status"})
		CurrencyConversionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "currency_conversions_total",
			Help:      "Count of currency conversions by direction and result.",
		}, []string{"direction", "result"})

		QuoteTotal = registerCounterVec(reg, QuoteTotal)
		TenderReconciliationTotal = registerCounterVec(reg, TenderReconciliationTotal)
		CurrencyConversionTotal = registerCounterVec(reg, CurrencyConversionTotal)
	})
}
