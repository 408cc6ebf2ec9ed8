// Package aitest provides a scripted chat model for tests.
package aitest

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModel replies with Reply (or Err) and records every prompt it receives.
type ChatModel struct {
	Reply string
	Err   error
	// Hook, when set, runs before the reply is returned and may block on ctx.
	Hook func(ctx context.Context) error

	mu     sync.Mutex
	inputs [][]*schema.Message
}

var _ model.ChatModel = (*ChatModel)(nil)

func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	m.mu.Unlock()

	if m.Hook != nil {
		if err := m.Hook(ctx); err != nil {
			return nil, err
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return schema.AssistantMessage(m.Reply, nil), nil
}

func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *ChatModel) BindTools(_ []*schema.ToolInfo) error {
	return nil
}

// Calls reports how many times the model was invoked.
func (m *ChatModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// LastInput returns the prompt of the most recent call.
func (m *ChatModel) LastInput() []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inputs) == 0 {
		return nil
	}
	return m.inputs[len(m.inputs)-1]
}
