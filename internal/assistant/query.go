// Package assistant implements the one piece of the chat/assistant feature
// spec.md asks the core to specify: turning a raw user question into the
// search query and optional time bounds internal/store.SearchCaptures
// consumes. Everything else about the assistant (the LLM loop itself) is
// out of scope.
package assistant

import (
	"regexp"
	"strings"
	"time"
)

// stopWords is the closed set of low-signal tokens dropped from a search
// query, verbatim from the glossary's stop-word set.
var stopWords = map[string]struct{}{
	"what": {}, "did": {}, "i": {}, "do": {}, "on": {}, "the": {}, "was": {}, "were": {},
	"last": {}, "yesterday": {}, "today": {}, "show": {}, "me": {}, "find": {}, "search": {},
	"look": {}, "for": {}, "my": {}, "a": {}, "an": {}, "in": {}, "have": {}, "has": {},
	"been": {}, "any": {}, "some": {}, "which": {}, "where": {}, "when": {}, "how": {},
	"why": {}, "can": {}, "could": {}, "would": {}, "should": {}, "will": {}, "that": {},
	"this": {}, "these": {}, "those": {}, "with": {}, "from": {}, "about": {}, "into": {},
	"through": {}, "during": {}, "before": {}, "after": {}, "above": {}, "below": {},
	"between": {}, "under": {}, "again": {}, "further": {}, "then": {}, "once": {},
	"here": {}, "there": {}, "all": {}, "each": {}, "few": {}, "more": {}, "most": {},
	"other": {}, "such": {}, "only": {}, "own": {}, "same": {}, "than": {}, "too": {},
	"very": {}, "just": {}, "also": {}, "now": {}, "work": {}, "done": {}, "watched": {},
	"looked": {}, "used": {}, "opened": {}, "saw": {}, "see": {}, "videos": {}, "video": {},
	"page": {}, "pages": {}, "site": {}, "sites": {}, "app": {}, "apps": {},
}

// timePhrase pairs a recognized phrase pattern with the bound window it
// implies, anchored to "now".
type timePhrase struct {
	pattern *regexp.Regexp
	bounds  func(now time.Time) (start, end time.Time)
}

var timePhrases = []timePhrase{
	{regexp.MustCompile(`(?i)\byesterday\b`), func(now time.Time) (time.Time, time.Time) {
		today := startOfDay(now)
		return today.AddDate(0, 0, -1), today
	}},
	{regexp.MustCompile(`(?i)\b(last|past)\s+week\b`), func(now time.Time) (time.Time, time.Time) {
		return now.AddDate(0, 0, -7), now
	}},
	{regexp.MustCompile(`(?i)\b(last|past)\s+hour\b`), func(now time.Time) (time.Time, time.Time) {
		return now.Add(-time.Hour), now
	}},
	{regexp.MustCompile(`(?i)\bthis\s+morning\b`), func(now time.Time) (time.Time, time.Time) {
		today := startOfDay(now)
		noon := today.Add(12 * time.Hour)
		end := now
		if end.After(noon) {
			end = noon
		}
		return today, end
	}},
	{regexp.MustCompile(`(?i)\btoday\b`), func(now time.Time) (time.Time, time.Time) {
		return startOfDay(now), now
	}},
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Build turns raw user text into a search query plus the optional time
// bounds a recognized time phrase implies, as of now. The first recognized
// phrase (in the priority order above) wins; its text is stripped from the
// query before token extraction, so e.g. "hour" and "week" never leak into
// the query string as literal terms.
func Build(now time.Time, text string) (query string, startMs, endMs *int64) {
	remaining := text
	for _, tp := range timePhrases {
		if loc := tp.pattern.FindStringIndex(remaining); loc != nil {
			start, end := tp.bounds(now)
			s, e := start.UnixMilli(), end.UnixMilli()
			startMs, endMs = &s, &e
			remaining = remaining[:loc[0]] + " " + remaining[loc[1]:]
			break
		}
	}

	return extractTerms(remaining), startMs, endMs
}

// extractTerms lowercases each whitespace-separated token, strips
// non-alphanumeric characters from its edges, discards tokens of length <=2
// or in the stop-word set, and joins the surviving unique tokens (in first-
// seen order) with spaces.
func extractTerms(text string) string {
	fields := strings.Fields(text)
	seen := make(map[string]struct{}, len(fields))
	var terms []string
	for _, f := range fields {
		tok := strings.ToLower(strings.TrimFunc(f, isNotAlphanumeric))
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		terms = append(terms, tok)
	}
	return strings.Join(terms, " ")
}

func isNotAlphanumeric(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	default:
		return true
	}
}
