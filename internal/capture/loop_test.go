package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/memri-app/memri/internal/backoff"
	"github.com/memri-app/memri/internal/frame"
	"github.com/memri-app/memri/internal/ocr"
	"github.com/memri-app/memri/internal/platform/fake"
	"github.com/memri-app/memri/internal/windowfilter"
)

// fakeClock advances instantly and lets the test drive exactly N ticks,
// then blocks until ctx is cancelled so Run exits cleanly.
type fakeClock struct {
	mu     sync.Mutex
	ticks  int
	max    int
	signal chan struct{}
}

func newFakeClock(max int) *fakeClock {
	return &fakeClock{max: max, signal: make(chan struct{}, 1)}
}

func (c *fakeClock) Now() time.Time { return time.Unix(0, 0) }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.ticks++
	done := c.ticks > c.max
	c.mu.Unlock()
	if done {
		select {
		case c.signal <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

type recordingSink struct {
	mu      sync.Mutex
	batches []CaptureBatch
	err     error
}

func (s *recordingSink) PersistBatch(ctx context.Context, batch CaptureBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, batch)
	return nil
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []CaptureBatch
}

func (e *recordingEmitter) Publish(batch CaptureBatch) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, batch)
}

func solidImg(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func newTestLoop(t *testing.T, src *fake.Source, sink *recordingSink, emitter *recordingEmitter, clock *fakeClock) *Loop {
	t.Helper()
	return &Loop{
		MonitorID:        0,
		Source:           src,
		Detector:         frame.NewDetector(),
		Backoff:          backoff.New(10*time.Millisecond, 100*time.Millisecond),
		Filter:           windowfilter.NewLive(windowfilter.New(nil, nil)),
		Dispatcher:       NewDispatcher(t.TempDir(), stubOCR{}, nil, testLogger()),
		Sink:             sink,
		Events:           emitter,
		IncludeUnfocused: true,
		Clock:            clock,
		Log:              testLogger(),
	}
}

type stubOCR struct{}

func (stubOCR) Recognize(ctx context.Context, pngBytes []byte, rctx ocr.Context) (ocr.Result, error) {
	return ocr.Result{}, nil
}

func TestRunPersistsSignificantFramesAndEmitsEvents(t *testing.T) {
	src := fake.New(1)
	src.Push(0, []fake.Window{{Image: solidImg(color.Black), AppName: "term", WindowTitle: "a", IsFocused: true}})
	src.Push(0, []fake.Window{{Image: solidImg(color.White), AppName: "term", WindowTitle: "b", IsFocused: true}})

	sink := &recordingSink{}
	emitter := &recordingEmitter{}
	clock := newFakeClock(2)
	loop := newTestLoop(t, src, sink, emitter, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	<-clock.signal
	cancel()
	<-done

	sink.mu.Lock()
	n := len(sink.batches)
	sink.mu.Unlock()
	if n < 2 {
		t.Fatalf("persisted batches = %d, want >= 2 (first frame + black->white transition)", n)
	}

	emitter.mu.Lock()
	ne := len(emitter.events)
	emitter.mu.Unlock()
	if ne != n {
		t.Errorf("events = %d, want one per persisted batch (%d)", ne, n)
	}
}

func TestRunSkipsInsignificantFramesWithoutPersisting(t *testing.T) {
	src := fake.New(1)
	img := solidImg(color.RGBA{R: 50, G: 50, B: 50, A: 255})
	for i := 0; i < 4; i++ {
		src.Push(0, []fake.Window{{Image: img, AppName: "term", WindowTitle: "a", IsFocused: true}})
	}

	sink := &recordingSink{}
	clock := newFakeClock(3)
	loop := newTestLoop(t, src, sink, &recordingEmitter{}, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()
	<-clock.signal
	cancel()
	<-done

	sink.mu.Lock()
	n := len(sink.batches)
	sink.mu.Unlock()
	// Only the first tick (FirstFrame) is significant; the rest are
	// identical frames and should be skipped.
	if n != 1 {
		t.Errorf("persisted batches = %d, want 1 (only the first frame)", n)
	}
}

func TestRunDoesNotAdvanceFrameNumberOnPersistFailure(t *testing.T) {
	src := fake.New(1)
	src.Push(0, []fake.Window{{Image: solidImg(color.Black), AppName: "term", WindowTitle: "a", IsFocused: true}})

	sink := &recordingSink{err: errors.New("disk full")}
	clock := newFakeClock(1)
	loop := newTestLoop(t, src, sink, nil, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()
	<-clock.signal
	cancel()
	<-done

	if loop.frameNumber != 0 {
		t.Errorf("frameNumber = %d, want 0 (persist failed, must not advance)", loop.frameNumber)
	}
}
