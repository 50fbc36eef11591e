// internal/chat/transcript_test.go
//
// Run: go test ./internal/chat -v

package chat

import (
	"context"
	"errors"
	"testing"
)

type stubBackend struct {
	reply string
	err   error
}

func (s stubBackend) SendChatQuery(context.Context, string) (string, error) {
	return s.reply, s.err
}

func TestTranscriptSeededWithWelcome(t *testing.T) {
	tr := NewTranscript()
	got := tr.Entries()
	if len(got) != 1 || got[0].Sender != SenderBot || got[0].Text != WelcomeMessage {
		t.Fatalf("entries = %+v", got)
	}
}

func TestAskRendersReplyNotRawJSON(t *testing.T) {
	svc := NewService(stubBackend{reply: "Hi there"}, nil)
	svc.Ask(t.Context(), "v1", "hello")

	got := svc.Transcript("v1").Entries()
	// welcome, user question, bot reply; typing gone.
	if len(got) != 3 {
		t.Fatalf("len = %d: %+v", len(got), got)
	}
	if got[1].Text != "hello" || got[1].Sender != SenderUser {
		t.Fatalf("user entry = %+v", got[1])
	}
	if got[2].Text != "Hi there" || got[2].Sender != SenderBot {
		t.Fatalf("bot entry = %+v", got[2])
	}
	for _, m := range got {
		if m.Sender == SenderTyping {
			t.Fatal("typing placeholder must be removed")
		}
	}
}

func TestAskFailureRendersErrorPrefixedMessage(t *testing.T) {
	svc := NewService(stubBackend{err: errors.New("backend down")}, nil)
	svc.Ask(t.Context(), "v1", "hello")

	got := svc.Transcript("v1").Entries()
	last := got[len(got)-1]
	if last.Text != "Error: Sorry, something went wrong. Please try again." {
		t.Fatalf("last = %+v", last)
	}
	for _, m := range got {
		if m.Sender == SenderTyping {
			t.Fatal("typing placeholder must be removed on error")
		}
	}
}

func TestRemoveTypingIsExactlyOnce(t *testing.T) {
	tr := NewTranscript()
	tr.Append("q", SenderUser)
	tr.Append("Thinking...", SenderTyping)

	tr.RemoveTyping()
	tr.RemoveTyping() // must not pop the user message

	got := tr.Entries()
	if len(got) != 2 || got[1].Text != "q" {
		t.Fatalf("entries = %+v", got)
	}
}

func TestAskIgnoresBlankAndFillsEmptyReply(t *testing.T) {
	svc := NewService(stubBackend{reply: ""}, nil)
	svc.Ask(t.Context(), "v1", "   ")
	if got := svc.Transcript("v1").Entries(); len(got) != 1 {
		t.Fatalf("blank question must be ignored: %+v", got)
	}

	svc.Ask(t.Context(), "v1", "q")
	got := svc.Transcript("v1").Entries()
	if got[len(got)-1].Text != "No response received." {
		t.Fatalf("last = %+v", got[len(got)-1])
	}
}

func TestTranscriptsAreIsolatedPerVisitor(t *testing.T) {
	svc := NewService(stubBackend{reply: "ok"}, nil)
	svc.Ask(t.Context(), "v1", "hello")

	if got := svc.Transcript("v2").Entries(); len(got) != 1 {
		t.Fatalf("fresh visitor must only see the welcome message: %+v", got)
	}
}
