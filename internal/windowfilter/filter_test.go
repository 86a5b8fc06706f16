package windowfilter

import "testing"

func TestAcceptNoFilters(t *testing.T) {
	f := New(nil, nil)
	if !f.Accept("Code.exe", "main.go") {
		t.Fatal("expected accept with no filters configured")
	}
}

func TestAcceptIgnoreWins(t *testing.T) {
	f := New([]string{"slack"}, []string{"slack"})
	if f.Accept("Slack.exe", "general channel") {
		t.Fatal("ignore should take priority over include")
	}
}

func TestAcceptIgnoreMatchesTitle(t *testing.T) {
	f := New([]string{"private"}, nil)
	if f.Accept("chrome.exe", "My Private Banking") {
		t.Fatal("expected rejection on title substring match")
	}
}

func TestAcceptIncludeRequiresMatch(t *testing.T) {
	f := New(nil, []string{"code", "terminal"})
	if !f.Accept("Code.exe", "main.go") {
		t.Error("expected accept: app matches include term")
	}
	if f.Accept("Spotify.exe", "now playing") {
		t.Error("expected reject: no include term matches")
	}
}

func TestAcceptIsCaseInsensitive(t *testing.T) {
	f := New([]string{"DISCORD"}, nil)
	if f.Accept("discord.exe", "general") {
		t.Fatal("expected case-insensitive ignore match")
	}
}
