package capture

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/memri-app/memri/internal/backoff"
	"github.com/memri-app/memri/internal/frame"
	"github.com/memri-app/memri/internal/metrics"
	"github.com/memri-app/memri/internal/platform"
	"github.com/memri-app/memri/internal/windowfilter"
)

// LoopState is the capture loop's current state.
type LoopState int

const (
	Running LoopState = iota
	ShuttingDown
)

// Clock abstracts "now" and "sleep" so tests can drive a Loop without real
// wall-clock waits.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RealClock is the production Clock, backed by time.Now/time.Timer.
func RealClock() Clock { return realClock{} }

// Loop drives one monitor's capture state machine: sleep, grab a frame,
// classify it, dispatch its windows if significant, persist, emit.
type Loop struct {
	MonitorID        int
	Source           platform.Source
	Detector         *frame.Detector
	Backoff          *backoff.Backoff
	Filter           *windowfilter.Live
	Dispatcher       *Dispatcher
	Sink             Sink
	Events           EventEmitter
	Archiver         Archiver
	Metrics          *metrics.Metrics
	IncludeUnfocused bool
	Clock            Clock
	Log              *slog.Logger

	state       LoopState
	frameNumber int64
}

// Archiver offers a durably-written image path to a secondary store. Never
// on the critical path: the loop calls it after a successful persist and
// never waits on it. Satisfied by internal/archive.Dispatcher.
type Archiver interface {
	Enqueue(ctx context.Context, imagePath string)
}

// Run executes ticks until ctx is cancelled. It never returns an error for
// transient per-tick failures (those are logged and folded into backoff);
// it only returns when ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	l.state = Running
	clock := l.Clock
	if clock == nil {
		clock = RealClock()
	}

	for {
		if err := clock.Sleep(ctx, l.Backoff.CurrentDelay()); err != nil {
			l.state = ShuttingDown
			return nil
		}
		if ctx.Err() != nil {
			l.state = ShuttingDown
			return nil
		}
		// Shutdown is observed only at the sleep boundary above; once a tick
		// starts, it runs to completion (including the DB commit) even if
		// ctx is cancelled mid-iteration, so a persisted batch can never be
		// rolled back by a SIGINT landing between the capture grab and the
		// commit.
		l.tick(context.WithoutCancel(ctx), clock)
	}
}

func (l *Loop) tick(ctx context.Context, clock Clock) {
	monitorLabel := strconv.Itoa(l.MonitorID)
	defer l.recordBackoffGauge(monitorLabel)

	mf, err := l.Source.CaptureFrame(ctx, l.MonitorID, l.IncludeUnfocused)
	if err != nil {
		l.Log.Warn("capture frame failed", "monitor", l.MonitorID, "error", err)
		l.Backoff.OnError()
		if l.Metrics != nil {
			l.Metrics.CaptureErrors.WithLabelValues(monitorLabel).Inc()
		}
		return
	}
	if l.Metrics != nil {
		l.Metrics.FramesCaptured.WithLabelValues(monitorLabel).Inc()
	}

	result := l.Detector.Evaluate(mf.MonitorImage)
	if result.Decision == frame.Insignificant {
		l.Backoff.Record(result.Decision)
		return
	}
	if l.Metrics != nil {
		l.Metrics.FramesSignificant.WithLabelValues(monitorLabel).Inc()
	}

	timestampMs := clock.Now().UnixMilli()

	admitted := make([]platform.CapturedWindow, 0, len(mf.Windows))
	for _, w := range mf.Windows {
		if l.Filter == nil || l.Filter.Accept(w.AppName, w.WindowTitle) {
			admitted = append(admitted, w)
		}
	}

	records := l.Dispatcher.Dispatch(ctx, timestampMs, l.frameNumber, admitted)
	batch := CaptureBatch{
		MonitorID:   l.MonitorID,
		FrameNumber: l.frameNumber,
		TimestampMs: timestampMs,
		Records:     records,
	}

	if err := l.Sink.PersistBatch(ctx, batch); err != nil {
		l.Log.Warn("persist batch failed", "monitor", l.MonitorID, "error", err)
		l.Backoff.OnError()
		if l.Metrics != nil {
			l.Metrics.CaptureErrors.WithLabelValues(monitorLabel).Inc()
		}
		return
	}

	l.frameNumber++
	l.Backoff.Record(result.Decision)
	if l.Events != nil {
		l.Events.Publish(batch)
	}
	if l.Archiver != nil {
		for _, rec := range records {
			if rec.ImagePath != "" {
				l.Archiver.Enqueue(ctx, rec.ImagePath)
			}
		}
	}
}

func (l *Loop) recordBackoffGauge(monitorLabel string) {
	if l.Metrics != nil {
		l.Metrics.BackoffDelayMs.WithLabelValues(monitorLabel).Set(float64(l.Backoff.CurrentDelay().Milliseconds()))
	}
}
