// Package conversation holds the client-side state of a chat about one product.
package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/zhouzirui/loan-match/backend/internal/model/chat"
	"github.com/zhouzirui/loan-match/backend/internal/model/product"
)

// State of a Session.
type State string

const (
	StateIdle     State = "idle"
	StateAwaiting State = "awaiting-response"
	// StateError follows a failed round trip and accepts Submit like StateIdle.
	StateError  State = "error"
	StateClosed State = "closed"
)

// FailureMessage is appended as the assistant turn when a round trip fails.
const FailureMessage = "Something went wrong."

// Asker performs one question round trip. history excludes the pending question.
type Asker interface {
	Ask(ctx context.Context, productID, message string, history []chat.Message) (string, error)
}

// Session is an ordered transcript scoped to a single product. At most one
// round trip is in flight; results that arrive after Close are discarded.
type Session struct {
	conversation chat.Conversation
	product      product.Product
	asker        Asker

	mu         sync.Mutex
	state      State
	messages   []chat.Message
	generation uint64
	cancel     context.CancelFunc
}

// Open starts an empty session for the selected product.
func Open(selected mo.Option[product.Product], asker Asker) (*Session, error) {
	p, ok := selected.Get()
	if !ok {
		return nil, ErrNoProduct
	}

	return &Session{
		conversation: chat.Conversation{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			CreatedAt: time.Now().UTC(),
		},
		product: p,
		asker:   asker,
		state:   StateIdle,
	}, nil
}

func (s *Session) ID() string {
	return s.conversation.ID
}

func (s *Session) Conversation() chat.Conversation {
	return s.conversation
}

func (s *Session) Product() product.Product {
	return s.product
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the transcript.
func (s *Session) History() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chat.Message(nil), s.messages...)
}

// Submit appends text as a user turn and blocks until the assistant reply is recorded.
//
// On failure one FailureMessage turn is appended and a *SessionError is returned.
// If ctx ends first, nothing beyond the user turn is appended, the session returns
// to idle and ctx.Err() is returned.
func (s *Session) Submit(ctx context.Context, text string) (chat.Message, error) {
	s.mu.Lock()
	switch {
	case s.state == StateClosed:
		s.mu.Unlock()
		return chat.Message{}, ErrSessionClosed
	case strings.TrimSpace(text) == "":
		s.mu.Unlock()
		return chat.Message{}, ErrBlankMessage
	case s.state == StateAwaiting:
		s.mu.Unlock()
		return chat.Message{}, ErrBusy
	}

	history := append([]chat.Message(nil), s.messages...)
	s.messages = append(s.messages, chat.UserMessage(text))
	s.state = StateAwaiting
	s.generation++
	gen := s.generation
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	answer, err := s.asker.Ask(reqCtx, s.product.ID, text, history)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen || s.state == StateClosed {
		return chat.Message{}, ErrSessionClosed
	}
	s.cancel = nil

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.state = StateIdle
			return chat.Message{}, ctxErr
		}
		reply := chat.AssistantMessage(FailureMessage)
		s.messages = append(s.messages, reply)
		s.state = StateError
		return reply, &SessionError{Err: err}
	}

	reply := chat.AssistantMessage(answer)
	s.messages = append(s.messages, reply)
	s.state = StateIdle
	return reply, nil
}

// Close cancels any in-flight round trip. Later results are dropped.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return nil
}
