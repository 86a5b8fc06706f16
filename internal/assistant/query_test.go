package assistant

import (
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func TestBuildStripsStopWordsAndShortTokens(t *testing.T) {
	query, start, end := Build(fixedNow, "what did I do on the rust tutorial")
	if query != "rust tutorial" {
		t.Fatalf("query = %q, want %q", query, "rust tutorial")
	}
	if start != nil || end != nil {
		t.Fatalf("expected no time bounds, got start=%v end=%v", start, end)
	}
}

func TestBuildDedupesTokens(t *testing.T) {
	query, _, _ := Build(fixedNow, "rust rust tutorial rust")
	if query != "rust tutorial" {
		t.Fatalf("query = %q, want deduped %q", query, "rust tutorial")
	}
}

func TestBuildRecognizesYesterday(t *testing.T) {
	_, start, end := Build(fixedNow, "what did I look at yesterday about rust")
	if start == nil || end == nil {
		t.Fatalf("expected time bounds for 'yesterday'")
	}
	wantStart := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC).UnixMilli()
	wantEnd := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC).UnixMilli()
	if *start != wantStart || *end != wantEnd {
		t.Fatalf("bounds = [%d,%d], want [%d,%d]", *start, *end, wantStart, wantEnd)
	}
}

func TestBuildRecognizesLastHourAndPastHour(t *testing.T) {
	for _, phrase := range []string{"last hour", "past hour"} {
		_, start, end := Build(fixedNow, "what did I do in the "+phrase)
		if start == nil || end == nil {
			t.Fatalf("phrase %q: expected time bounds", phrase)
		}
		if *end != fixedNow.UnixMilli() {
			t.Fatalf("phrase %q: end = %d, want now", phrase, *end)
		}
		if *start != fixedNow.Add(-time.Hour).UnixMilli() {
			t.Fatalf("phrase %q: start = %d, want now-1h", phrase, *start)
		}
	}
}

func TestBuildRecognizesLastWeekAndPastWeek(t *testing.T) {
	for _, phrase := range []string{"last week", "past week"} {
		_, start, end := Build(fixedNow, "show me my browsing from "+phrase)
		if start == nil || end == nil {
			t.Fatalf("phrase %q: expected time bounds", phrase)
		}
		if *start != fixedNow.AddDate(0, 0, -7).UnixMilli() {
			t.Fatalf("phrase %q: start = %d, want now-7d", phrase, *start)
		}
	}
}

func TestBuildRecognizesThisMorning(t *testing.T) {
	_, start, end := Build(fixedNow, "what did I read this morning")
	if start == nil || end == nil {
		t.Fatalf("expected time bounds for 'this morning'")
	}
	wantStart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC).UnixMilli()
	wantEnd := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC).UnixMilli()
	if *start != wantStart || *end != wantEnd {
		t.Fatalf("bounds = [%d,%d], want [%d,%d]", *start, *end, wantStart, wantEnd)
	}
}

func TestBuildRecognizesToday(t *testing.T) {
	_, start, end := Build(fixedNow, "what have I done today")
	if start == nil || end == nil {
		t.Fatalf("expected time bounds for 'today'")
	}
	if *end != fixedNow.UnixMilli() {
		t.Fatalf("end = %d, want now", *end)
	}
}

func TestBuildTimePhraseWordsNeverLeakIntoQuery(t *testing.T) {
	query, _, _ := Build(fixedNow, "rust documentation last week")
	if query != "rust documentation" {
		t.Fatalf("query = %q, want %q (no leaking 'last'/'week')", query, "rust documentation")
	}
}

func TestBuildNoRecognizedPhraseLeavesBoundsNil(t *testing.T) {
	_, start, end := Build(fixedNow, "golang concurrency patterns")
	if start != nil || end != nil {
		t.Fatalf("expected nil bounds without a time phrase")
	}
}
