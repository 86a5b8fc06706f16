// Package platform defines the boundary between the capture loop and the
// operating system: grabbing a monitor image and enumerating its on-screen
// windows. Real capture goes through screenshot.go; tests and the seeder
// command use the fake subpackage instead.
package platform

import (
	"context"
	"image"
)

// CapturedWindow is one window observed during a single capture_frame call.
type CapturedWindow struct {
	Image       image.Image
	AppName     string
	WindowTitle string
	PID         int
	IsFocused   bool
}

// MonitorFrame is the result of one capture_frame call: the whole-monitor
// image plus the windows visible on it, already deny-listed by the source
// and minimized windows already excluded.
type MonitorFrame struct {
	MonitorID    int
	MonitorImage image.Image
	Windows      []CapturedWindow
}

// Source grabs monitor frames. Implementations are expected to apply the
// hard-coded shell/system deny lists and to drop minimized windows before
// returning.
type Source interface {
	// NumMonitors returns how many monitors are currently available.
	NumMonitors(ctx context.Context) (int, error)

	// CaptureFrame grabs monitorID's image and its windows. When
	// includeUnfocused is false, only the focused window is returned.
	CaptureFrame(ctx context.Context, monitorID int, includeUnfocused bool) (MonitorFrame, error)
}

// denyListedApps are never returned by a well-behaved Source, regardless of
// platform: shells and window-manager chrome carry no useful screen memory.
var denyListedApps = map[string]struct{}{
	"explorer.exe":   {},
	"dwm.exe":        {},
	"taskmgr.exe":    {},
	"finder":         {},
	"dock":           {},
	"systemuiserver": {},
	"gnome-shell":    {},
	"plasmashell":    {},
	"xfdesktop":      {},
}

// denyListedTitles are window titles that never carry useful screen memory
// regardless of which application owns them (empty/desktop placeholders).
var denyListedTitles = map[string]struct{}{
	"":                {},
	"desktop":         {},
	"program manager": {},
}

// IsDenyListed reports whether a window should be dropped by a Source
// implementation before it ever reaches the capture loop.
func IsDenyListed(appName, windowTitle string) bool {
	if _, ok := denyListedApps[lower(appName)]; ok {
		return true
	}
	if _, ok := denyListedTitles[lower(windowTitle)]; ok {
		return true
	}
	return false
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
