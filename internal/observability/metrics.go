package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds the Prometheus metrics of the pricing service.
type Metrics struct {
	// Registry owns the metrics below and backs the /metrics endpoint.
	Registry *prometheus.Registry

	calculations        *prometheus.CounterVec
	calculationDuration *prometheus.HistogramVec
	configNotReady      prometheus.Counter
	undefinedRates      *prometheus.CounterVec
}

// NewMetrics registers every metric in a private registry, so it can be
// called more than once in tests.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		calculations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propostas_calculations_total",
				Help: "Total pricing calculations by module.",
			},
			[]string{"module"},
		),
		calculationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "propostas_calculation_duration_seconds",
				Help:    "Duration of pricing calculations, configuration load included.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		configNotReady: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "propostas_config_not_ready_total",
				Help: "Calculations refused because the pricing configuration was incomplete.",
			},
		),
		undefinedRates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propostas_printer_undefined_rate_total",
				Help: "Printer cost-per-page calculations with a zero divisor.",
			},
			[]string{"component"},
		),
	}
}

// IncrCalculation counts one calculation for module.
func (m *Metrics) IncrCalculation(module string) {
	m.calculations.WithLabelValues(module).Inc()
}

// RecordCalculationDuration records the duration of an operation.
func (m *Metrics) RecordCalculationDuration(operation string, d time.Duration) {
	m.calculationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) IncrConfigNotReady() {
	m.configNotReady.Inc()
}

func (m *Metrics) IncrUndefinedRate(component string) {
	m.undefinedRates.WithLabelValues(component).Inc()
}

// CalculationCount returns how many calculations were counted for module.
func (m *Metrics) CalculationCount(module string) float64 {
	return counterValue(m.calculations.WithLabelValues(module))
}

// ConfigNotReadyCount returns how many calculations were refused.
func (m *Metrics) ConfigNotReadyCount() float64 {
	return counterValue(m.configNotReady)
}

func counterValue(c prometheus.Counter) float64 {
	metric := &dto.Metric{}
	if err := c.Write(metric); err != nil {
		return 0
	}
	if metric.Counter != nil && metric.Counter.Value != nil {
		return *metric.Counter.Value
	}
	return 0
}
