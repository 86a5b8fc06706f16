package capture

import (
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/memri-app/memri/internal/ocr"
	"github.com/memri-app/memri/internal/platform"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func solidImage(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

type fakeEngine struct {
	result ocr.Result
	err    error
}

func (f fakeEngine) Recognize(ctx context.Context, pngBytes []byte, rctx ocr.Context) (ocr.Result, error) {
	return f.result, f.err
}

func TestDispatchWritesImageAndRecognizesText(t *testing.T) {
	dir := t.TempDir()
	conf := float32(0.9)
	eng := fakeEngine{result: ocr.Result{Text: "hello world", Confidence: &conf}}
	d := NewDispatcher(dir, eng, []string{"en"}, testLogger())

	windows := []platform.CapturedWindow{
		{Image: solidImage(color.Black), AppName: "chrome.exe", WindowTitle: "https://example.com - Google Chrome", IsFocused: true},
	}

	recs := d.Dispatch(context.Background(), 1000, 1, windows)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	r := recs[0]
	if r.Text != "hello world" {
		t.Errorf("text = %q, want hello world", r.Text)
	}
	if r.BrowserURL != "https://example.com" {
		t.Errorf("browser_url = %q, want https://example.com", r.BrowserURL)
	}
	if r.ImagePath == "" {
		t.Fatal("image_path should be set")
	}
	if _, err := os.Stat(r.ImagePath); err != nil {
		t.Errorf("image not written: %v", err)
	}
	if filepath.Dir(r.ImagePath) != dir {
		t.Errorf("image written outside image dir: %s", r.ImagePath)
	}
}

func TestDispatchOCRFailureKeepsRecordWithEmptyText(t *testing.T) {
	dir := t.TempDir()
	eng := fakeEngine{err: context.DeadlineExceeded}
	d := NewDispatcher(dir, eng, nil, testLogger())

	windows := []platform.CapturedWindow{
		{Image: solidImage(color.White), AppName: "term", WindowTitle: "shell"},
	}
	recs := d.Dispatch(context.Background(), 1000, 1, windows)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0].Text != "" || recs[0].Confidence != nil || recs[0].OCRJSON != "" {
		t.Errorf("expected empty text/nil confidence/nil json on ocr failure, got %+v", recs[0])
	}
	if recs[0].ImagePath == "" {
		t.Error("image should still have been written despite ocr failure")
	}
}

func TestDispatchIdxIncrementsRegardlessOfOutcome(t *testing.T) {
	dir := t.TempDir()
	eng := fakeEngine{result: ocr.Result{Text: "ok"}}
	d := NewDispatcher(dir, eng, nil, testLogger())

	windows := []platform.CapturedWindow{
		{Image: solidImage(color.Black), AppName: "a", WindowTitle: "w1"},
		{Image: solidImage(color.White), AppName: "b", WindowTitle: "w2"},
	}
	recs := d.Dispatch(context.Background(), 2000, 5, windows)
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	if filepath.Base(recs[0].ImagePath) != "frame_2000_5_0.png" {
		t.Errorf("window 0 path = %s, want frame_2000_5_0.png", filepath.Base(recs[0].ImagePath))
	}
	if filepath.Base(recs[1].ImagePath) != "frame_2000_5_1.png" {
		t.Errorf("window 1 path = %s, want frame_2000_5_1.png", filepath.Base(recs[1].ImagePath))
	}
}

func TestDispatchUnwritableImageDirStillRecordsWindow(t *testing.T) {
	// Use a path that can't be created as a directory (a file in its place).
	base := t.TempDir()
	blocker := filepath.Join(base, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	badDir := filepath.Join(blocker, "images")

	eng := fakeEngine{result: ocr.Result{Text: "ok"}}
	d := NewDispatcher(badDir, eng, nil, testLogger())

	windows := []platform.CapturedWindow{
		{Image: solidImage(color.Black), AppName: "a", WindowTitle: "w1"},
	}
	recs := d.Dispatch(context.Background(), 1000, 1, windows)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0].ImagePath != "" {
		t.Errorf("image_path = %q, want empty on write failure", recs[0].ImagePath)
	}
	if recs[0].Text != "" {
		t.Errorf("text = %q, want empty on write failure", recs[0].Text)
	}
}
