package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CycleSnapshot is the pipeline state exported as gauges on every scrape.
type CycleSnapshot struct {
	Running         bool
	CyclesCompleted int
	CyclesFailed    int
	// LastCycle maps a record outcome to its count in the most recent cycle.
	LastCycle map[string]int
}

// RegisterCycleGauges exports snapshot through observable gauges. snapshot is called
// from the collection goroutine and must be safe for concurrent use.
func RegisterCycleGauges(meterProvider metric.MeterProvider, namespace string, snapshot func() CycleSnapshot) error {
	meter := meterProvider.Meter(namespace)

	running, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_cycle_running", namespace),
		metric.WithDescription("Whether a cycle is currently running"),
	)
	if err != nil {
		return fmt.Errorf("failed to create running gauge: %w", err)
	}

	cycles, err := meter.Int64ObservableCounter(
		fmt.Sprintf("%s_cycles_total", namespace),
		metric.WithDescription("Completed and failed cycles since start"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create cycles counter: %w", err)
	}

	records, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_last_cycle_records", namespace),
		metric.WithDescription("Records per outcome in the most recent cycle"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create records gauge: %w", err)
	}

	_, err = meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		current := snapshot()

		var isRunning int64
		if current.Running {
			isRunning = 1
		}
		observer.ObserveInt64(running, isRunning)
		observer.ObserveInt64(cycles, int64(current.CyclesCompleted),
			metric.WithAttributes(attribute.String("status", "completed")))
		observer.ObserveInt64(cycles, int64(current.CyclesFailed),
			metric.WithAttributes(attribute.String("status", "failed")))
		for outcome, count := range current.LastCycle {
			observer.ObserveInt64(records, int64(count), metric.WithAttributes(attribute.String("outcome", outcome)))
		}
		return nil
	}, running, cycles, records)
	if err != nil {
		return fmt.Errorf("failed to register cycle callback: %w", err)
	}
	return nil
}
