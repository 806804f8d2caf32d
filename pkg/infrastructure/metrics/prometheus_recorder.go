// Package metrics exposes simulation progress as Prometheus metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vsinha/cropsim/pkg/application/services/arbitration"
	"github.com/vsinha/cropsim/pkg/application/services/simulation"
	"github.com/vsinha/cropsim/pkg/domain/entities"
)

const namespace = "cropsim"

// PrometheusRecorder records simulation progress in its own registry
type PrometheusRecorder struct {
	registry *prometheus.Registry

	daysSimulated    prometheus.Counter
	phaseTransitions *prometheus.CounterVec
	stage            prometheus.Gauge
	liveWt           *prometheus.GaugeVec
	deadWt           *prometheus.GaugeVec
	liveN            *prometheus.GaugeVec
	allocated        *prometheus.CounterVec
	unmet            *prometheus.CounterVec
	retranslocated   *prometheus.CounterVec
}

// Verify interface compliance
var _ simulation.Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates a recorder with every metric registered
func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		daysSimulated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_simulated_total",
			Help:      "Number of simulated days.",
		}),
		phaseTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_transitions_total",
			Help:      "Phase transitions by source and destination phase.",
		}, []string{"from", "to"}),
		stage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage",
			Help:      "Current phenological stage.",
		}),
		liveWt: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "organ_live_wt_grams_per_m2",
			Help:      "Live dry weight per organ.",
		}, []string{"organ"}),
		deadWt: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "organ_dead_wt_grams_per_m2",
			Help:      "Dead dry weight per organ.",
		}, []string{"organ"}),
		liveN: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "organ_live_n_grams_per_m2",
			Help:      "Live nitrogen per organ.",
		}, []string{"organ"}),
		allocated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocated_grams_per_m2_total",
			Help:      "Allocated supply by resource.",
		}, []string{"resource"}),
		unmet: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unmet_demand_grams_per_m2_total",
			Help:      "Demand that could not be met by resource.",
		}, []string{"resource"}),
		retranslocated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retranslocated_grams_per_m2_total",
			Help:      "Supply drawn from organ reserves by resource.",
		}, []string{"resource"}),
	}
	r.registry.MustRegister(
		r.daysSimulated, r.phaseTransitions, r.stage,
		r.liveWt, r.deadWt, r.liveN,
		r.allocated, r.unmet, r.retranslocated,
	)
	return r
}

// Registry returns the registry holding the recorder's metrics
func (r *PrometheusRecorder) Registry() *prometheus.Registry { return r.registry }

func (r *PrometheusRecorder) RecordDay(record *entities.DailyRecord) {
	r.daysSimulated.Inc()
	r.stage.Set(record.Stage)
	for _, organ := range record.Organs {
		r.liveWt.WithLabelValues(organ.Name).Set(organ.Live.Wt())
		r.deadWt.WithLabelValues(organ.Name).Set(organ.Dead.Wt())
		r.liveN.WithLabelValues(organ.Name).Set(organ.Live.N())
	}
}

func (r *PrometheusRecorder) RecordTransition(transition entities.PhaseTransition) {
	r.phaseTransitions.WithLabelValues(transition.From, transition.To).Inc()
}

func (r *PrometheusRecorder) RecordArbitration(result *arbitration.ArbitrationResult) {
	resources := []struct {
		name   string
		result arbitration.ResourceResult
	}{
		{"dry_matter", result.DryMatter},
		{"nitrogen", result.Nitrogen},
	}
	for _, res := range resources {
		r.allocated.WithLabelValues(res.name).Add(nonNegative(res.result.Allocated))
		r.unmet.WithLabelValues(res.name).Add(nonNegative(res.result.Unmet))
		r.retranslocated.WithLabelValues(res.name).Add(nonNegative(res.result.Retranslocated))
	}
}

// WriteToTextfile writes the current metrics in the text exposition format
func (r *PrometheusRecorder) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

// counters panic on negative increments
func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
