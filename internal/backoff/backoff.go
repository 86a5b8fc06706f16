// Package backoff implements the capture loop's adaptive tick delay: it
// grows multiplicatively while frames are unchanged, grows additively on
// error, and resets on anything worth capturing. Grounded on the shape of
// the teacher's ws.Backoff (base/max/current held as durations, a Next-like
// accessor) but with the reset/additive rules spec.md requires instead of
// pure exponential reconnect backoff.
package backoff

import (
	"math"
	"time"

	"github.com/memri-app/memri/internal/frame"
)

// Backoff tracks the current inter-tick delay for one capture loop.
type Backoff struct {
	base    time.Duration
	max     time.Duration
	current time.Duration
}

// New returns a Backoff starting at base. max is clamped to at least base.
func New(base, max time.Duration) *Backoff {
	if max < base {
		max = base
	}
	return &Backoff{base: base, max: max, current: base}
}

// CurrentDelay returns the delay to sleep before the next iteration.
func (b *Backoff) CurrentDelay() time.Duration {
	return b.current
}

// Record applies the frame-change decision to the backoff state: Significant
// and FirstFrame reset to base, Insignificant grows multiplicatively
// (x1.5, capped at max).
func (b *Backoff) Record(dec frame.Decision) {
	switch dec {
	case frame.Significant, frame.FirstFrame:
		b.current = b.base
	case frame.Insignificant:
		grown := time.Duration(math.Round(float64(b.current) * 1.5))
		b.current = clamp(grown, b.base, b.max)
	}
}

// OnError grows the delay additively by one base unit, capped at max.
func (b *Backoff) OnError() {
	b.current = clamp(b.current+b.base, b.base, b.max)
}

func clamp(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}
