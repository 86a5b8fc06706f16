package backoff

import (
	"testing"
	"time"

	"github.com/memri-app/memri/internal/frame"
)

func TestNewClampsMaxToBase(t *testing.T) {
	b := New(2*time.Second, time.Second)
	if b.max != 2*time.Second {
		t.Errorf("max = %v, want clamped to base (2s)", b.max)
	}
	if got := b.CurrentDelay(); got != 2*time.Second {
		t.Errorf("initial delay = %v, want base", got)
	}
}

func TestRecordInsignificantGrowsMultiplicatively(t *testing.T) {
	b := New(time.Second, time.Minute)
	b.Record(frame.Insignificant)
	if got := b.CurrentDelay(); got != 1500*time.Millisecond {
		t.Errorf("delay after one insignificant tick = %v, want 1.5s", got)
	}
}

func TestRecordCapsAtMax(t *testing.T) {
	b := New(time.Second, 3*time.Second)
	for i := 0; i < 10; i++ {
		b.Record(frame.Insignificant)
	}
	if got := b.CurrentDelay(); got != 3*time.Second {
		t.Errorf("delay = %v, want capped at max (3s)", got)
	}
}

func TestRecordSignificantResetsToBase(t *testing.T) {
	b := New(time.Second, time.Minute)
	for i := 0; i < 5; i++ {
		b.Record(frame.Insignificant)
	}
	b.Record(frame.Significant)
	if got := b.CurrentDelay(); got != time.Second {
		t.Errorf("delay after significant = %v, want base", got)
	}
}

func TestRecordFirstFrameResetsToBase(t *testing.T) {
	b := New(time.Second, time.Minute)
	b.Record(frame.Insignificant)
	b.Record(frame.FirstFrame)
	if got := b.CurrentDelay(); got != time.Second {
		t.Errorf("delay after first_frame = %v, want base", got)
	}
}

func TestOnErrorGrowsAdditivelyAndCaps(t *testing.T) {
	b := New(2*time.Second, 5*time.Second)
	b.OnError()
	if got := b.CurrentDelay(); got != 4*time.Second {
		t.Errorf("delay after one error = %v, want base+base = 4s", got)
	}
	b.OnError()
	if got := b.CurrentDelay(); got != 5*time.Second {
		t.Errorf("delay after two errors = %v, want capped at max (5s)", got)
	}
}

func TestDelayNeverBelowBase(t *testing.T) {
	b := New(500*time.Millisecond, time.Second)
	b.Record(frame.Significant)
	if got := b.CurrentDelay(); got < 500*time.Millisecond {
		t.Errorf("delay = %v, want >= base", got)
	}
}
