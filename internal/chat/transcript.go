// internal/chat/transcript.go
//
// Assistant conversation state.  A Transcript is the ordered message
// list for one visitor: user messages, bot replies, and at most one
// transient "typing" placeholder that is removed when the reply (or the
// error) lands.  Transcripts live in memory only; the open/closed flag
// of the widget is what persists, and that lives in the key/value store.

package chat

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/farmsathi/portal/internal/metrics"
	"github.com/farmsathi/portal/internal/remote"
)

// Sender labels one transcript entry.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderBot    Sender = "bot"
	SenderTyping Sender = "typing"
)

// WelcomeMessage seeds an empty transcript.
const WelcomeMessage = "Hello! I'm your FarmSathi assistant. I can help you " +
	"with crop recommendations, fertilizer advice, and disease detection. " +
	"How can I assist you today?"

const typingPlaceholder = "Thinking..."

// Message is one transcript entry.
type Message struct {
	Text   string
	Sender Sender
}

// Transcript is the append-only message list for one visitor.
// Safe for concurrent use.
type Transcript struct {
	mu      sync.Mutex
	entries []Message
}

// NewTranscript returns a transcript seeded with the welcome message.
func NewTranscript() *Transcript {
	return &Transcript{entries: []Message{{Text: WelcomeMessage, Sender: SenderBot}}}
}

// Append adds one entry.
func (t *Transcript) Append(text string, sender Sender) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Message{Text: text, Sender: sender})
	metrics.ChatMessagesTotal.WithLabelValues(string(sender)).Inc()
}

// RemoveTyping drops the trailing typing placeholder if present.  A
// second call is a no-op, so a reply and a late error cannot both pop
// a real message.
func (t *Transcript) RemoveTyping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := len(t.entries); n > 0 && t.entries[n-1].Sender == SenderTyping {
		t.entries = t.entries[:n-1]
	}
}

// Entries returns a copy of the transcript.
func (t *Transcript) Entries() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.entries))
	copy(out, t.entries)
	return out
}

/*──────────────────────────── service ────────────────────────────────────*/

// querier is the slice of the backend client the assistant needs.
type querier interface {
	SendChatQuery(ctx context.Context, text string) (string, error)
}

// Service holds per-visitor transcripts and drives the assistant
// round-trip.
type Service struct {
	backend querier
	log     *zap.SugaredLogger

	mu          sync.Mutex
	transcripts map[string]*Transcript
}

// NewService returns a Service over the given backend client.
func NewService(backend querier, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.S()
	}
	return &Service{
		backend:     backend,
		log:         log,
		transcripts: make(map[string]*Transcript),
	}
}

// Transcript returns the visitor's transcript, creating and seeding it
// on first use.
func (s *Service) Transcript(visitorID string) *Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transcripts[visitorID]
	if !ok {
		t = NewTranscript()
		s.transcripts[visitorID] = t
	}
	return t
}

// Ask records the visitor's question, queries the assistant, and
// records the reply.  Blank questions are ignored.  Failures land in
// the transcript as an error-prefixed bot message; the typing
// placeholder is removed exactly once either way.
func (s *Service) Ask(ctx context.Context, visitorID, question string) {
	question = strings.TrimSpace(question)
	if question == "" {
		return
	}

	t := s.Transcript(visitorID)
	t.Append(question, SenderUser)
	t.Append(typingPlaceholder, SenderTyping)

	reply, err := s.backend.SendChatQuery(ctx, question)
	t.RemoveTyping()
	if err != nil {
		s.log.Warnw("assistant query failed", "err", err)
		msg := err.Error()
		if !remote.IsTransportError(err) || msg == "" {
			msg = "Sorry, something went wrong. Please try again."
		}
		t.Append("Error: "+msg, SenderBot)
		return
	}
	if reply == "" {
		reply = "No response received."
	}
	t.Append(reply, SenderBot)
}
