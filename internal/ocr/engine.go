// Package ocr defines the text-recognition contract the capture dispatcher
// depends on. The dispatcher treats the engine as an external capability: a
// real engine (a local model, a cloud API) is wired in by whoever runs the
// daemon; this package only fixes the shape of the call.
package ocr

import "context"

// Context carries the metadata a recognizer may use to tune recognition
// (e.g. language hints) without needing to inspect the image itself.
type Context struct {
	WindowName string
	AppName    string
	IsFocused  bool
	Languages  []string
}

// Result is what a successful recognition call returns. Confidence and JSON
// are both optional: a recognizer that can't produce one may leave it zero.
type Result struct {
	Text       string
	Confidence *float32
	JSON       string
}

// Engine recognizes text in a single window image. Implementations may
// fail; the dispatcher treats a failure as "no text recognized" rather than
// aborting the batch.
type Engine interface {
	Recognize(ctx context.Context, pngBytes []byte, rctx Context) (Result, error)
}
