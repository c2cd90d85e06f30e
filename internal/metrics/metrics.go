package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "garage"

type Metrics struct {
	Transitions   *prometheus.CounterVec
	Rejections    *prometheus.CounterVec
	PartsIssued   prometheus.Counter
	Invoices      prometheus.Counter
	InvoiceAmount prometheus.Counter
	LowStockParts prometheus.Gauge
}

// New registers the collectors on reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_transitions_total",
			Help:      "Job card status transitions, by source and target status.",
		}, []string{"from", "to"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Rejected operations, by operation and reason code.",
		}, []string{"operation", "reason"}),
		PartsIssued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parts_issued_units_total",
			Help:      "Units of parts issued to job cards.",
		}),
		Invoices: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_created_total",
			Help:      "Invoices created.",
		}),
		InvoiceAmount: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_amount_total",
			Help:      "Sum of invoice totals.",
		}),
		LowStockParts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "low_stock_parts",
			Help:      "Parts at or below their minimum stock level.",
		}),
	}
}

func (m *Metrics) Reject(operation, reason string) {
	m.Rejections.WithLabelValues(operation, reason).Inc()
}
