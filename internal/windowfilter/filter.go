// Package windowfilter decides which captured windows are admitted into a
// batch, based on caller-configured app/title substring allow/deny sets.
package windowfilter

import (
	"strings"
	"sync/atomic"
)

// Filter holds the ignore and include substring sets, both already
// lowercased.
type Filter struct {
	ignore  []string
	include []string
}

// New builds a Filter from raw (possibly mixed-case) term lists.
func New(ignore, include []string) Filter {
	return Filter{ignore: lowerAll(ignore), include: lowerAll(include)}
}

// Accept reports whether a window with the given app name and title should
// be kept. ignore takes priority: any match there rejects the window
// outright. Otherwise an empty include set accepts everything; a non-empty
// one requires at least one substring match.
func (f Filter) Accept(app, title string) bool {
	app = strings.ToLower(app)
	title = strings.ToLower(title)

	if len(f.ignore) > 0 && anyContains(f.ignore, app, title) {
		return false
	}
	if len(f.include) == 0 {
		return true
	}
	return anyContains(f.include, app, title)
}

func anyContains(terms []string, app, title string) bool {
	for _, t := range terms {
		if strings.Contains(app, t) || strings.Contains(title, t) {
			return true
		}
	}
	return false
}

func lowerAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(t)
	}
	return out
}

// Live holds a Filter that can be swapped atomically, so a config reload
// can replace the ignore/include sets every running capture loop consults
// without restarting those loops. The zero value accepts everything until
// Store is called.
type Live struct {
	current atomic.Pointer[Filter]
}

// NewLive returns a Live initialized to f.
func NewLive(f Filter) *Live {
	l := &Live{}
	l.Store(f)
	return l
}

// Store atomically replaces the filter consulted by Accept.
func (l *Live) Store(f Filter) {
	l.current.Store(&f)
}

// Accept delegates to the currently stored Filter.
func (l *Live) Accept(app, title string) bool {
	f := l.current.Load()
	if f == nil {
		return true
	}
	return f.Accept(app, title)
}
