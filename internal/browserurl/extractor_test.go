package browserurl

import "testing"

func TestExtractIgnoresUnfocused(t *testing.T) {
	if got := Extract(false, "chrome.exe", "https://example.com - Google Chrome"); got != "" {
		t.Errorf("got %q, want empty (not focused)", got)
	}
}

func TestExtractIgnoresNonBrowserApps(t *testing.T) {
	if got := Extract(true, "code.exe", "https://example.com - editor"); got != "" {
		t.Errorf("got %q, want empty (not a browser)", got)
	}
}

func TestExtractFindsURL(t *testing.T) {
	got := Extract(true, "Google Chrome", "example.com/page - https://example.com/page - Google Chrome")
	if got != "https://example.com/page" {
		t.Errorf("got %q, want https://example.com/page", got)
	}
}

func TestExtractStripsTrailingPunctuation(t *testing.T) {
	got := Extract(true, "firefox.exe", "Check this out (https://example.com/a,b.) — Mozilla Firefox")
	if got != "https://example.com/a,b" {
		t.Errorf("got %q, want https://example.com/a,b", got)
	}
}

func TestExtractNoURLInTitle(t *testing.T) {
	if got := Extract(true, "brave.exe", "New Tab - Brave"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestExtractStripsMultipleTrailingChars(t *testing.T) {
	got := Extract(true, "Microsoft Edge", "see https://example.com)]} for details")
	if got != "https://example.com" {
		t.Errorf("got %q, want https://example.com", got)
	}
}

func TestExtractRecognizesAllowlistedApps(t *testing.T) {
	apps := []string{"Google Chrome", "Microsoft Edge", "firefox.exe", "Brave Browser", "Opera", "Vivaldi", "Arc"}
	for _, app := range apps {
		got := Extract(true, app, "https://example.com title")
		if got != "https://example.com" {
			t.Errorf("app %q: got %q, want https://example.com", app, got)
		}
	}
}
