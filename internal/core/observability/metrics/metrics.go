// Package metrics exports race activity as OpenTelemetry instruments. The
// Recorder observes the session event bus, so races need no metrics calls of
// their own.
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/zeusync/circuit/internal/core/events/bus"
	"github.com/zeusync/circuit/internal/core/race/session"
)

const instrumentationName = "github.com/zeusync/circuit/internal/core/observability/metrics"

// Recorder is a bus.EventBusObserver. Instruments are safe for concurrent
// use, so one Recorder may observe many sessions.
type Recorder struct {
	checkpoints   metric.Int64Counter
	laps          metric.Int64Counter
	lapTime       metric.Float64Histogram
	finished      metric.Int64Counter
	raceTime      metric.Float64Histogram
	ticks         metric.Int64Counter
	handlerErrors metric.Int64Counter
}

var _ bus.EventBusObserver = (*Recorder)(nil)

// New creates the instruments on m. A nil meter uses the global provider,
// which is a no-op unless one has been installed.
func New(m metric.Meter) (*Recorder, error) {
	if m == nil {
		m = otel.Meter(instrumentationName)
	}
	r := &Recorder{}

	var err error
	if r.checkpoints, err = m.Int64Counter("race.checkpoints.passed",
		metric.WithDescription("Checkpoints accepted in order")); err != nil {
		return nil, fmt.Errorf("creating checkpoints counter: %w", err)
	}
	if r.laps, err = m.Int64Counter("race.laps.completed",
		metric.WithDescription("Laps completed")); err != nil {
		return nil, fmt.Errorf("creating laps counter: %w", err)
	}
	if r.lapTime, err = m.Float64Histogram("race.lap.duration",
		metric.WithDescription("Lap time"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating lap time histogram: %w", err)
	}
	if r.finished, err = m.Int64Counter("race.sessions.finished",
		metric.WithDescription("Races that reached the lap target")); err != nil {
		return nil, fmt.Errorf("creating finished counter: %w", err)
	}
	if r.raceTime, err = m.Float64Histogram("race.session.duration",
		metric.WithDescription("Time from start to finish"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating race time histogram: %w", err)
	}
	if r.ticks, err = m.Int64Counter("race.ticks",
		metric.WithDescription("Simulation ticks run")); err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}
	if r.handlerErrors, err = m.Int64Counter("race.events.handler_errors",
		metric.WithDescription("Event deliveries where a handler failed")); err != nil {
		return nil, fmt.Errorf("creating handler errors counter: %w", err)
	}
	return r, nil
}

func driver(player bool) attribute.KeyValue {
	if player {
		return attribute.String("driver", "player")
	}
	return attribute.String("driver", "ai")
}

func (r *Recorder) OnPublish(_ string, event bus.Event) {
	ctx := context.Background()
	switch e := event.Data().(type) {
	case session.CheckpointPassed:
		r.checkpoints.Add(ctx, 1, metric.WithAttributes(attribute.Int("zone", e.Zone)))
	case session.LapCompleted:
		attrs := metric.WithAttributes(driver(e.Player))
		r.laps.Add(ctx, 1, attrs)
		r.lapTime.Record(ctx, e.LapTime.Seconds(), attrs)
	case session.RaceFinished:
		attrs := metric.WithAttributes(driver(e.PlayerWon), attribute.String("race", e.Race))
		r.finished.Add(ctx, 1, attrs)
		r.raceTime.Record(ctx, e.Elapsed.Seconds(), attrs)
	}
}

func (r *Recorder) OnDelivered(eventType string, _ int, err error, _ time.Duration) {
	if err != nil {
		r.handlerErrors.Add(context.Background(), 1, metric.WithAttributes(attribute.String("event", eventType)))
	}
}

// Ticks counts simulation ticks for the named race.
func (r *Recorder) Ticks(ctx context.Context, race string, n int64) {
	if n > 0 {
		r.ticks.Add(ctx, n, metric.WithAttributes(attribute.String("race", race)))
	}
}
