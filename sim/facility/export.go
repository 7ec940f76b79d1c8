package facility

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// WaitBuckets are histogram buckets for admission waits, in working days.
var WaitBuckets = []float64{0, 1, 5, 10, 20, 40, 80, 160}

// Exporter publishes a Result as Prometheus metrics on a private registry,
// for scraping by a textfile collector.
type Exporter struct {
	registry *prometheus.Registry

	Patients       *prometheus.GaugeVec
	BacklogFinal   prometheus.Gauge
	BacklogMax     prometheus.Gauge
	OnTreatment    prometheus.Gauge
	Interruptions  *prometheus.GaugeVec
	PenaltyDays    prometheus.Gauge
	WaitDays       prometheus.Histogram
	Slots          prometheus.Gauge
	SimulatedDays  prometheus.Gauge
	EventsExecuted prometheus.Gauge
}

// NewExporter creates the metrics and registers them.
func NewExporter() *Exporter {
	reg := prometheus.NewRegistry()
	e := &Exporter{
		registry: reg,

		Patients: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "linac_sim",
			Name:      "patients",
			Help:      "Patients by outcome at the end of the run",
		}, []string{"outcome"}),

		BacklogFinal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "linac_sim",
			Name:      "backlog_final",
			Help:      "Backlog length at the horizon",
		}),

		BacklogMax: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "linac_sim",
			Name:      "backlog_max",
			Help:      "Longest backlog observed",
		}),

		OnTreatment: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "linac_sim",
			Name:      "on_treatment",
			Help:      "Courses running at the horizon",
		}),

		Interruptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "linac_sim",
			Name:      "interruptions",
			Help:      "Interrupts by outcome",
		}, []string{"outcome"}),

		PenaltyDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "linac_sim",
			Name:      "penalty_days",
			Help:      "Treatment days added by interruptions",
		}),

		WaitDays: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "linac_sim",
			Name:      "wait_days",
			Help:      "Working days from referral to admission",
			Buckets:   WaitBuckets,
		}),

		Slots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "linac_sim",
			Name:      "treatment_slots",
			Help:      "Concurrent treatment capacity",
		}),

		SimulatedDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "linac_sim",
			Name:      "simulated_days",
			Help:      "Simulated horizon in working days",
		}),

		EventsExecuted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "linac_sim",
			Name:      "events_executed",
			Help:      "Events executed by the scheduler",
		}),
	}
	reg.MustRegister(
		e.Patients, e.BacklogFinal, e.BacklogMax, e.OnTreatment,
		e.Interruptions, e.PenaltyDays, e.WaitDays, e.Slots,
		e.SimulatedDays, e.EventsExecuted,
	)
	return e
}

// Registry returns the registry holding the exporter's metrics.
func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

// Observe copies r into the metrics.
func (e *Exporter) Observe(r *Result) {
	e.Patients.WithLabelValues("generated").Set(float64(r.PatientsGenerated))
	e.Patients.WithLabelValues("started").Set(float64(r.PatientsStarted))
	e.Patients.WithLabelValues("completed").Set(float64(r.PatientsCompleted))
	e.Patients.WithLabelValues("pending").Set(float64(r.PendingAdmission))
	e.BacklogFinal.Set(float64(r.FinalBacklogSize))
	e.BacklogMax.Set(float64(r.MaxBacklogSize))
	e.OnTreatment.Set(float64(r.OnTreatmentAtEnd))
	e.Interruptions.WithLabelValues("delivered").Set(float64(r.Interruptions))
	e.Interruptions.WithLabelValues("skipped").Set(float64(r.SkippedInterrupts))
	e.PenaltyDays.Set(float64(r.PenaltyDaysAdded))
	for _, w := range r.WaitTimes {
		e.WaitDays.Observe(w)
	}
	e.Slots.Set(float64(r.TotalSlots))
	e.SimulatedDays.Set(r.HorizonDays)
	e.EventsExecuted.Set(float64(r.EventsExecuted))
}

// WriteTextfile writes the metrics in Prometheus text format to path.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
