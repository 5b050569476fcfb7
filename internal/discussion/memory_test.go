package discussion

import (
	"context"
	"errors"
	"testing"

	"github.com/meltosdev/meltos/internal/session"
)

func TestMemoryStore_CreateThenSpeak(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	meta, err := store.Create(ctx, "title", session.UserId("user"))
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if meta.Title != "title" || meta.Creator != "user" {
		t.Fatalf("Create() meta = %+v", meta)
	}

	msg, err := store.Speak(ctx, meta.Id, session.UserId("user2"), "hello world!")
	if err != nil {
		t.Fatalf("Speak() error: %v", err)
	}
	if msg.UserId != "user2" || msg.Text != "hello world!" {
		t.Fatalf("Speak() message = %+v", msg)
	}
}

func TestMemoryStore_Reply(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	meta, err := store.Create(ctx, "title", session.UserId("user"))
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	msg, err := store.Speak(ctx, meta.Id, session.UserId("user2"), "hello world!")
	if err != nil {
		t.Fatalf("Speak() error: %v", err)
	}

	reply, err := store.Reply(ctx, session.UserId("user"), msg.Id, "reply")
	if err != nil {
		t.Fatalf("Reply() error: %v", err)
	}
	if reply.ReplyTo != msg.Id {
		t.Errorf("Reply() ReplyTo = %q, want %q", reply.ReplyTo, msg.Id)
	}
}

func TestMemoryStore_ReplyToUnknownMessageFails(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Reply(context.Background(), session.UserId("user"), MessageId("nope"), "reply")
	if !errors.Is(err, &Error{Kind: ErrMessageNotExists}) {
		t.Errorf("Reply() = %v, want ErrMessageNotExists", err)
	}
}

func TestMemoryStore_SpeakAfterCloseFails(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	meta, err := store.Create(ctx, "title", session.UserId("user"))
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := store.Close(ctx, meta.Id); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	if _, err := store.Speak(ctx, meta.Id, session.UserId("user"), "too late"); !errors.Is(err, &Error{Kind: ErrDiscussionNotExists}) {
		t.Errorf("Speak() after close = %v, want ErrDiscussionNotExists", err)
	}
}

func TestMemoryStore_DiscussionByReturnsAllMessagesInOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	meta, err := store.Create(ctx, "title", session.UserId("user"))
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	first, err := store.Speak(ctx, meta.Id, session.UserId("user"), "first")
	if err != nil {
		t.Fatalf("Speak() error: %v", err)
	}
	if _, err := store.Reply(ctx, session.UserId("user2"), first.Id, "second"); err != nil {
		t.Fatalf("Reply() error: %v", err)
	}

	bundle, err := store.DiscussionBy(ctx, meta.Id)
	if err != nil {
		t.Fatalf("DiscussionBy() error: %v", err)
	}
	if len(bundle.Messages) != 2 {
		t.Fatalf("DiscussionBy() messages = %d, want 2", len(bundle.Messages))
	}
	if bundle.Messages[0].Text != "first" || bundle.Messages[1].Text != "second" {
		t.Errorf("DiscussionBy() order = %+v", bundle.Messages)
	}
}

func TestMemoryStore_AllDiscussionsExcludesClosed(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	open, err := store.Create(ctx, "open", session.UserId("user"))
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	closed, err := store.Create(ctx, "closed", session.UserId("user"))
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := store.Close(ctx, closed.Id); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	bundles, err := store.AllDiscussions(ctx)
	if err != nil {
		t.Fatalf("AllDiscussions() error: %v", err)
	}
	if len(bundles) != 1 || bundles[0].Meta.Id != open.Id {
		t.Errorf("AllDiscussions() = %+v, want only %q", bundles, open.Id)
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("**bold**")
	if err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	if html == "" {
		t.Error("RenderHTML() returned empty output")
	}
}
