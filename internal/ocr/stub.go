package ocr

import (
	"context"
	"fmt"
)

// StubEngine is a deterministic Engine with no real recognition behind it:
// it reports a fixed, per-window placeholder string rather than running
// any model. It exists so the capture loop and the seeder can run end to
// end without a real OCR backend configured.
type StubEngine struct{}

// NewStubEngine returns a StubEngine.
func NewStubEngine() *StubEngine {
	return &StubEngine{}
}

func (StubEngine) Recognize(ctx context.Context, pngBytes []byte, rctx Context) (Result, error) {
	return Result{Text: fmt.Sprintf("[stub ocr for %s]", rctx.WindowName)}, nil
}
