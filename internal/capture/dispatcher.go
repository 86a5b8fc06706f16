package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/memri-app/memri/internal/browserurl"
	"github.com/memri-app/memri/internal/metrics"
	"github.com/memri-app/memri/internal/ocr"
	"github.com/memri-app/memri/internal/platform"
)

// Dispatcher turns filtered windows into persisted records: PNG-encode,
// write to disk, run OCR, extract a browser URL. A failed encode or write
// ends that window's processing (its record keeps what was gathered so far,
// without image path or text); no failure ever aborts the batch.
type Dispatcher struct {
	imageDir  string
	engine    ocr.Engine
	languages []string
	log       *slog.Logger

	// Metrics is optional; when set, OCR failures are counted against it.
	Metrics *metrics.Metrics
}

// NewDispatcher returns a Dispatcher writing images under imageDir and
// invoking engine for text recognition.
func NewDispatcher(imageDir string, engine ocr.Engine, languages []string, log *slog.Logger) *Dispatcher {
	return &Dispatcher{imageDir: imageDir, engine: engine, languages: languages, log: log}
}

// Dispatch processes every window in order, returning one record per
// window. idx is assigned monotonically starting at 0, regardless of
// per-window outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, timestampMs int64, frameNumber int64, windows []platform.CapturedWindow) []CapturedWindowRecord {
	if err := os.MkdirAll(d.imageDir, 0o755); err != nil {
		d.log.Warn("image directory unavailable", "dir", d.imageDir, "error", err)
	}

	records := make([]CapturedWindowRecord, 0, len(windows))
	for idx, win := range windows {
		records = append(records, d.dispatchOne(ctx, timestampMs, frameNumber, idx, win))
	}
	return records
}

func (d *Dispatcher) dispatchOne(ctx context.Context, timestampMs, frameNumber int64, idx int, win platform.CapturedWindow) CapturedWindowRecord {
	rec := CapturedWindowRecord{
		WindowName: win.WindowTitle,
		AppName:    win.AppName,
		BrowserURL: browserurl.Extract(win.IsFocused, win.AppName, win.WindowTitle),
	}

	pngBytes, err := encodePNG(win.Image)
	if err != nil {
		d.log.Warn("png encode failed", "window", win.WindowTitle, "error", err)
		return rec
	}

	imagePath := filepath.Join(d.imageDir, fmt.Sprintf("frame_%d_%d_%d.png", timestampMs, frameNumber, idx))
	if err := writeAtomic(imagePath, pngBytes); err != nil {
		d.log.Warn("image write failed", "path", imagePath, "error", err)
		return rec
	}
	rec.ImagePath = imagePath

	result, err := d.engine.Recognize(ctx, pngBytes, ocr.Context{
		WindowName: win.WindowTitle,
		AppName:    win.AppName,
		IsFocused:  win.IsFocused,
		Languages:  d.languages,
	})
	if err != nil {
		d.log.Warn("ocr recognize failed", "window", win.WindowTitle, "error", err)
		if d.Metrics != nil {
			d.Metrics.OCRFailures.Inc()
		}
		return rec
	}

	rec.Text = result.Text
	rec.Confidence = result.Confidence
	rec.OCRJSON = result.JSON
	return rec
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeAtomic writes data to a temp file in the same directory as path,
// then renames it into place, so readers never observe a partial write.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
