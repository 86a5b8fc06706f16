package platform

import (
	"context"
	"fmt"
	"os"

	"github.com/kbinani/screenshot"
)

// ScreenshotSource is the real Source, backed by kbinani/screenshot. It
// captures whole monitors; per-application window enumeration is
// platform-specific window-manager territory this adapter stays out of, so
// each monitor is reported as carrying a single focused "window" covering
// the full monitor image.
type ScreenshotSource struct {
	hostname string
}

// NewScreenshotSource returns a Source that reads real monitors.
func NewScreenshotSource() *ScreenshotSource {
	host, _ := os.Hostname()
	return &ScreenshotSource{hostname: host}
}

func (s *ScreenshotSource) NumMonitors(ctx context.Context) (int, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return 0, fmt.Errorf("platform: no active displays detected")
	}
	return n, nil
}

func (s *ScreenshotSource) CaptureFrame(ctx context.Context, monitorID int, includeUnfocused bool) (MonitorFrame, error) {
	bounds := screenshot.GetDisplayBounds(monitorID)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return MonitorFrame{}, fmt.Errorf("platform: capture monitor %d: %w", monitorID, err)
	}

	window := CapturedWindow{
		Image:       img,
		AppName:     "desktop",
		WindowTitle: s.hostname,
		PID:         0,
		IsFocused:   true,
	}

	return MonitorFrame{
		MonitorID:    monitorID,
		MonitorImage: img,
		Windows:      []CapturedWindow{window},
	}, nil
}
