// Package capture wires together the frame signature detector, window
// filter, and OCR engine into a per-window dispatch step (Dispatcher)
// and a per-monitor Run loop (Loop) that drives it on a timer.
package capture

import "context"

// CapturedWindowRecord is one window's worth of dispatch output, ready to
// hand to storage.
type CapturedWindowRecord struct {
	WindowName string
	AppName    string
	Text       string
	Confidence *float32
	OCRJSON    string
	ImagePath  string
	BrowserURL string
}

// CaptureBatch is everything produced by one significant tick of one
// monitor's loop.
type CaptureBatch struct {
	MonitorID   int
	FrameNumber int64
	TimestampMs int64
	Records     []CapturedWindowRecord
}

// Sink persists a batch. Implemented by internal/store.
type Sink interface {
	PersistBatch(ctx context.Context, batch CaptureBatch) error
}

// EventEmitter publishes a notification once a batch is durably stored.
// Implemented by internal/events.
type EventEmitter interface {
	Publish(batch CaptureBatch)
}
