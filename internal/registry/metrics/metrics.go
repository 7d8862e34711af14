package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "landregistry/pkg/domain-errors"
)

// Metrics provides observability for the registry module.
type Metrics struct {
	PropertiesRegistered  prometheus.Counter
	PropertiesTransferred prometheus.Counter
	PropertiesAudited     prometheus.Counter
	AdministratorsGranted prometheus.Counter
	StatusChanges         *prometheus.CounterVec
	OperationsDenied      *prometheus.CounterVec
	OperationDuration     *prometheus.HistogramVec
}

// New registers the registry metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PropertiesRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "landregistry_properties_registered_total",
			Help: "Total number of properties registered",
		}),
		PropertiesTransferred: f.NewCounter(prometheus.CounterOpts{
			Name: "landregistry_properties_transferred_total",
			Help: "Total number of ownership transfers",
		}),
		PropertiesAudited: f.NewCounter(prometheus.CounterOpts{
			Name: "landregistry_properties_audited_total",
			Help: "Total number of notarized audits",
		}),
		AdministratorsGranted: f.NewCounter(prometheus.CounterOpts{
			Name: "landregistry_administrators_granted_total",
			Help: "Total number of administrator grants, including bootstrap",
		}),
		StatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landregistry_status_changes_total",
			Help: "Property status transitions by target status",
		}, []string{"status"}),
		OperationsDenied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landregistry_operations_denied_total",
			Help: "Mutating operations rejected by a precondition",
		}, []string{"operation", "code"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "landregistry_operation_duration_seconds",
			Help:    "Duration of registry operations",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementRegistered()  { m.PropertiesRegistered.Inc() }
func (m *Metrics) IncrementTransferred() { m.PropertiesTransferred.Inc() }
func (m *Metrics) IncrementAudited()     { m.PropertiesAudited.Inc() }
func (m *Metrics) IncrementGranted()     { m.AdministratorsGranted.Inc() }

func (m *Metrics) IncrementStatusChange(status string) {
	m.StatusChanges.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementDenied(operation string, code dErrors.Code) {
	m.OperationsDenied.WithLabelValues(operation, string(code)).Inc()
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
