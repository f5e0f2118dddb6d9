package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the application workflow.
type Metrics struct {
	Transitions         *prometheus.CounterVec
	TransitionConflicts *prometheus.CounterVec
	CertificatesIssued  *prometheus.CounterVec
	PaymentsSettled     *prometheus.CounterVec
	ServiceRequests     *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers on reg. Tests pass a fresh registry so
// repeated construction does not panic on duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "homestay_transitions_total",
			Help: "Total number of committed status transitions",
		}, []string{"from", "to"}),
		TransitionConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "homestay_transition_conflicts_total",
			Help: "Transitions rejected because the application state changed concurrently",
		}, []string{"operation"}),
		CertificatesIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "homestay_certificates_issued_total",
			Help: "Certificates issued by application kind",
		}, []string{"kind"}),
		PaymentsSettled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "homestay_payments_settled_total",
			Help: "Payment settlements by outcome",
		}, []string{"outcome"}),
		ServiceRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "homestay_service_requests_created_total",
			Help: "Service requests opened against approved applications",
		}, []string{"kind"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "homestay_operation_duration_seconds",
			Help:    "Duration of workflow service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementTransition(from, to string) {
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncrementConflict(operation string) {
	m.TransitionConflicts.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncrementCertificateIssued(kind string) {
	m.CertificatesIssued.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementPaymentSettled(outcome string) {
	m.PaymentsSettled.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementServiceRequest(kind string) {
	m.ServiceRequests.WithLabelValues(kind).Inc()
}

// ObserveOperation records the duration of operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
