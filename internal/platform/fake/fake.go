// Package fake is a deterministic platform.Source used by tests and by the
// memri-seed command to inject fixed images without touching real monitors.
package fake

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/memri-app/memri/internal/platform"
)

// Window is one scripted window to return from a capture.
type Window struct {
	Image       image.Image
	AppName     string
	WindowTitle string
	PID         int
	IsFocused   bool
}

// Source replays a fixed, caller-supplied sequence of frames. Frames is
// indexed by call count (the Nth CaptureFrame call returns Frames[N],
// clamped to the last entry once exhausted). Safe for concurrent use.
type Source struct {
	mu       sync.Mutex
	Monitors int
	Frames   []map[int][]Window // one map per tick, keyed by monitor ID
	calls    map[int]int        // per-monitor call counter
	Err      error
}

// New returns a Source with a fixed monitor count and an empty frame script.
func New(monitors int) *Source {
	return &Source{Monitors: monitors, calls: make(map[int]int)}
}

// Push appends one tick's windows for monitorID to the script.
func (s *Source) Push(monitorID int, windows []Window) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tick := map[int][]Window{monitorID: windows}
	s.Frames = append(s.Frames, tick)
}

func (s *Source) NumMonitors(ctx context.Context) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Monitors, nil
}

func (s *Source) CaptureFrame(ctx context.Context, monitorID int, includeUnfocused bool) (platform.MonitorFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return platform.MonitorFrame{}, s.Err
	}

	idx := s.calls[monitorID]
	s.calls[monitorID] = idx + 1
	if len(s.Frames) == 0 {
		return platform.MonitorFrame{}, fmt.Errorf("fake: no frames scripted for monitor %d", monitorID)
	}
	if idx >= len(s.Frames) {
		idx = len(s.Frames) - 1
	}

	windows := s.Frames[idx][monitorID]
	out := make([]platform.CapturedWindow, 0, len(windows))
	var monitorImage image.Image
	for _, w := range windows {
		if !includeUnfocused && !w.IsFocused {
			continue
		}
		if w.IsFocused || monitorImage == nil {
			monitorImage = w.Image
		}
		out = append(out, platform.CapturedWindow{
			Image:       w.Image,
			AppName:     w.AppName,
			WindowTitle: w.WindowTitle,
			PID:         w.PID,
			IsFocused:   w.IsFocused,
		})
	}
	if monitorImage == nil && len(windows) > 0 {
		monitorImage = windows[0].Image
	}

	return platform.MonitorFrame{
		MonitorID:    monitorID,
		MonitorImage: monitorImage,
		Windows:      out,
	}, nil
}
