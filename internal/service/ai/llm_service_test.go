package ai_test

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/loan-match/backend/internal/model/chat"
	"github.com/zhouzirui/loan-match/backend/internal/model/product"
	"github.com/zhouzirui/loan-match/backend/internal/service/ai"
	"github.com/zhouzirui/loan-match/backend/internal/service/ai/aitest"
)

func TestBuildSystemPromptContainsEveryFact(t *testing.T) {
	p := product.Seed()[0]
	got := ai.BuildSystemPrompt(p)

	for _, want := range []string{
		p.ID, p.Bank, p.Name, "11.5%", "30000", "700", "12 to 60 months",
		string(p.DisbursalSpeed), string(p.DocsLevel), p.Summary, ai.RefusalSentence,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("system prompt missing %q:\n%s", want, got)
		}
	}
}

func TestGeneratorMessageOrder(t *testing.T) {
	fake := &aitest.ChatModel{Reply: "  The APR is 11.5%.  "}
	gen, err := ai.NewGenerator(context.Background(), fake, 0)
	if err != nil {
		t.Fatalf("NewGenerator err: %v", err)
	}

	history := []chat.Message{
		chat.UserMessage("What is the tenure?"),
		chat.AssistantMessage("12 to 60 months."),
	}
	msg, err := gen.Generate(context.Background(), product.Seed()[0], history, "What is the APR?")
	if err != nil {
		t.Fatalf("Generate err: %v", err)
	}

	input := fake.LastInput()
	if len(input) != 4 {
		t.Fatalf("expected 4 prompt messages, got %d", len(input))
	}
	wantRoles := []schema.RoleType{schema.System, schema.User, schema.Assistant, schema.User}
	for i, role := range wantRoles {
		if input[i].Role != role {
			t.Fatalf("message %d: expected role %s, got %s", i, role, input[i].Role)
		}
	}
	if input[1].Content != "What is the tenure?" || input[3].Content != "What is the APR?" {
		t.Fatalf("unexpected prompt contents: %+v", input)
	}

	answer, grounded := ai.AnswerText(msg)
	if !grounded || answer != "The APR is 11.5%." {
		t.Fatalf("unexpected answer %q grounded=%v", answer, grounded)
	}
}

func TestGeneratorHistoryLimit(t *testing.T) {
	fake := &aitest.ChatModel{Reply: "ok"}
	gen, err := ai.NewGenerator(context.Background(), fake, 2)
	if err != nil {
		t.Fatalf("NewGenerator err: %v", err)
	}

	history := []chat.Message{
		chat.UserMessage("one"),
		chat.AssistantMessage("two"),
		chat.UserMessage("three"),
		chat.AssistantMessage("four"),
	}
	if _, err := gen.Generate(context.Background(), product.Seed()[1], history, "five"); err != nil {
		t.Fatalf("Generate err: %v", err)
	}

	input := fake.LastInput()
	if len(input) != 4 {
		t.Fatalf("expected system + 2 history + query, got %d", len(input))
	}
	if input[1].Content != "three" || input[2].Content != "four" {
		t.Fatalf("expected most recent turns, got %q and %q", input[1].Content, input[2].Content)
	}
}

func TestAnswerTextFallback(t *testing.T) {
	for _, msg := range []*schema.Message{nil, schema.AssistantMessage("   ", nil)} {
		answer, grounded := ai.AnswerText(msg)
		if grounded || answer != ai.FallbackAnswer {
			t.Fatalf("expected fallback, got %q grounded=%v", answer, grounded)
		}
	}
}

func TestNewGeneratorRequiresModel(t *testing.T) {
	if _, err := ai.NewGenerator(context.Background(), nil, 0); err == nil {
		t.Fatal("expected error for nil model")
	}
}
