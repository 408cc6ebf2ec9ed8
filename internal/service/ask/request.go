package ask

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zhouzirui/loan-match/backend/internal/model/chat"
)

// Turn is a history entry as sent by clients. Content is a pointer so that null can be rejected.
type Turn struct {
	Role    chat.Role `json:"role"`
	Content *string   `json:"content"`
}

// Request is the body of POST /ask.
type Request struct {
	ProductID string `json:"productId"`
	Message   string `json:"message"`
	History   []Turn `json:"history"`
	// Product is an optional client snapshot. It is never trusted; the catalog is authoritative.
	Product json.RawMessage `json:"product,omitempty"`
}

// Status classifies a Result.
type Status string

const (
	StatusOK       Status = "ok"
	StatusNotFound Status = "not_found"
	StatusFailed   Status = "failed"
)

// Fixed answers returned instead of generated text.
const (
	NotFoundAnswer = "Product not found."
	FailureAnswer  = "Something went wrong."
)

// Result is the outcome of a question.
type Result struct {
	Answer string
	Status Status
}

// validate checks the request and converts its history into chat messages.
func (r Request) validate() ([]chat.Message, error) {
	if strings.TrimSpace(r.Message) == "" {
		return nil, &ValidationError{Field: "message", Reason: "must not be blank"}
	}

	history := make([]chat.Message, 0, len(r.History))
	for i, turn := range r.History {
		if !turn.Role.Valid() {
			return nil, &ValidationError{
				Field:  fmt.Sprintf("history[%d].role", i),
				Reason: fmt.Sprintf("must be %q or %q", chat.RoleUser, chat.RoleAssistant),
			}
		}
		if turn.Content == nil {
			return nil, &ValidationError{Field: fmt.Sprintf("history[%d].content", i), Reason: "must not be null"}
		}
		history = append(history, chat.Message{Role: turn.Role, Content: *turn.Content})
	}

	if strings.TrimSpace(r.ProductID) == "" {
		return nil, &ValidationError{Field: "productId", Reason: "must not be blank"}
	}
	return history, nil
}
