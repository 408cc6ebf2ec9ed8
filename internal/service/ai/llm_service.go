package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/loan-match/backend/internal/model/chat"
	"github.com/zhouzirui/loan-match/backend/internal/model/product"
)

// Generator runs the grounded prompt through a chat model.
type Generator struct {
	chain        compose.Runnable[map[string]any, *schema.Message]
	historyLimit int
}

// NewGenerator compiles the system/history/query chain around chatModel.
// historyLimit keeps only the most recent turns; zero keeps them all.
func NewGenerator(ctx context.Context, chatModel model.ChatModel, historyLimit int) (*Generator, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile grounded chain: %w", err)
	}

	return &Generator{chain: runnable, historyLimit: historyLimit}, nil
}

// Generate invokes the chain once. The caller owns timeouts through ctx.
func (g *Generator) Generate(ctx context.Context, p product.Product, history []chat.Message, question string) (*schema.Message, error) {
	response, err := g.chain.Invoke(ctx, g.BuildChainInput(p, history, question))
	if err != nil {
		return nil, fmt.Errorf("failed to run grounded chain: %w", err)
	}
	return response, nil
}

// BuildChainInput maps a question onto the template variables.
func (g *Generator) BuildChainInput(p product.Product, history []chat.Message, question string) map[string]any {
	return map[string]any{
		"system":  BuildSystemPrompt(p),
		"history": g.buildHistoryMessages(history),
		"query":   question,
	}
}

func (g *Generator) buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if g.historyLimit > 0 && len(messages) > g.historyLimit {
		startIdx = len(messages) - g.historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}

// AnswerText extracts the trimmed answer. Empty output yields FallbackAnswer and false.
func AnswerText(msg *schema.Message) (string, bool) {
	if msg == nil {
		return FallbackAnswer, false
	}
	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return FallbackAnswer, false
	}
	return text, true
}
