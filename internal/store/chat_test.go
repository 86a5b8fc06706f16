package store

import (
	"context"
	"testing"
)

func TestInsertAndFetchChatMessages(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertChatMessage(ctx, "user", "what was I looking at an hour ago?"); err != nil {
		t.Fatalf("insert user message: %v", err)
	}
	if _, err := s.InsertChatMessage(ctx, "assistant", "you had a terminal open"); err != nil {
		t.Fatalf("insert assistant message: %v", err)
	}

	msgs, err := s.FetchChatMessages(ctx, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].Role != "assistant" || msgs[1].Role != "user" {
		t.Errorf("roles = %q, %q, want assistant, user (newest first)", msgs[0].Role, msgs[1].Role)
	}
}

func TestFetchChatMessagesRespectsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.InsertChatMessage(ctx, "user", "msg"); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	msgs, err := s.FetchChatMessages(ctx, 3)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(msgs))
	}
}
