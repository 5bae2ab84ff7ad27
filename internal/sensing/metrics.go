package sensing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the sensing pipeline.
var (
	eventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graysense_events_received_total",
		Help: "Events produced by input sources",
	}, []string{"input"})

	eventsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graysense_events_dispatched_total",
		Help: "Events delivered to the processor's handlers",
	})

	handlerFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graysense_handler_failures_total",
		Help: "Handler or listener failures caught during dispatch",
	})

	decodeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graysense_decode_failures_total",
		Help: "Input documents that could not be decoded",
	}, []string{"input"})

	unresolvedSensors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graysense_unresolved_sensor_events_total",
		Help: "Events dropped because their sensor has no associated entity",
	})

	unresolvedEntities = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graysense_unresolved_entity_events_total",
		Help: "Resolved events skipped because their entity has no model",
	})

	valuesApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graysense_model_values_applied_total",
		Help: "Sensed values written to entity models",
	})

	valuesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graysense_model_values_skipped_total",
		Help: "Payload fields skipped for a non-numeric type or value",
	})

	eventsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graysense_events_recorded_total",
		Help: "Events appended to the recording file",
	})

	eventsRepublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graysense_events_republished_total",
		Help: "Events published back to the broker",
	})
)
