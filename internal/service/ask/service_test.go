package ask_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/loan-match/backend/internal/model/product"
	"github.com/zhouzirui/loan-match/backend/internal/service/ai"
	"github.com/zhouzirui/loan-match/backend/internal/service/ai/aitest"
	"github.com/zhouzirui/loan-match/backend/internal/service/ask"
)

type failingStore struct{ err error }

func (s failingStore) List(context.Context) ([]product.Product, error) { return nil, s.err }
func (s failingStore) FindByID(context.Context, string) (product.Product, error) {
	return product.Product{}, s.err
}

func newService(t *testing.T, store product.Store, fake *aitest.ChatModel, timeout time.Duration) *ask.Service {
	t.Helper()
	gen, err := ai.NewGenerator(context.Background(), fake, 0)
	require.NoError(t, err)
	return ask.NewService(store, gen, timeout, zerolog.New(io.Discard))
}

func text(s string) *string { return &s }

func TestAskAnswersFromProductFacts(t *testing.T) {
	fake := &aitest.ChatModel{Reply: "The APR is 8.2%."}
	svc := newService(t, product.NewMemoryStore(product.Seed()), fake, time.Second)

	res, err := svc.Ask(context.Background(), ask.Request{
		ProductID: "2",
		Message:   "What is the APR?",
		History: []ask.Turn{
			{Role: "user", Content: text("Hi")},
			{Role: "assistant", Content: text("Hello, ask me about this loan.")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ask.StatusOK, res.Status)
	assert.Equal(t, "The APR is 8.2%.", res.Answer)
	require.Equal(t, 1, fake.Calls())

	input := fake.LastInput()
	require.Len(t, input, 4)
	system := input[0].Content
	for _, want := range []string{"ICICI", "Smart Home Loan", "8.2", "45000", "720", "60 to 360 months", "standard", ai.RefusalSentence} {
		assert.Contains(t, system, want)
	}
	assert.Equal(t, "What is the APR?", input[3].Content)
}

func TestAskUnknownProductSkipsGeneration(t *testing.T) {
	fake := &aitest.ChatModel{Reply: "unused"}
	svc := newService(t, product.NewMemoryStore(product.Seed()), fake, time.Second)

	res, err := svc.Ask(context.Background(), ask.Request{ProductID: "999", Message: "What is the APR?"})

	var nf *ask.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "999", nf.ProductID)
	assert.Equal(t, ask.NotFoundAnswer, res.Answer)
	assert.Equal(t, ask.StatusNotFound, res.Status)
	assert.Zero(t, fake.Calls())
}

func TestAskValidationHappensBeforeLookup(t *testing.T) {
	fake := &aitest.ChatModel{Reply: "unused"}
	store := failingStore{err: errors.New("store must not be called")}
	svc := newService(t, store, fake, time.Second)

	cases := map[string]ask.Request{
		"blank message":   {ProductID: "1", Message: "   "},
		"blank product":   {ProductID: " ", Message: "hi"},
		"bad role":        {ProductID: "1", Message: "hi", History: []ask.Turn{{Role: "system", Content: text("x")}}},
		"null content":    {ProductID: "1", Message: "hi", History: []ask.Turn{{Role: "user"}}},
		"missing product": {Message: "hi"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := svc.Ask(context.Background(), req)
			var ve *ask.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve.Field)
			assert.Empty(t, res.Answer)
		})
	}
	assert.Zero(t, fake.Calls())
}

func TestAskValidationReportsField(t *testing.T) {
	svc := newService(t, product.NewMemoryStore(product.Seed()), &aitest.ChatModel{}, time.Second)

	_, err := svc.Ask(context.Background(), ask.Request{
		ProductID: "1",
		Message:   "hi",
		History:   []ask.Turn{{Role: "user", Content: text("a")}, {Role: "assistant"}},
	})
	var ve *ask.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "history[1].content", ve.Field)
}

func TestAskGenerationFailureIsSanitized(t *testing.T) {
	fake := &aitest.ChatModel{Err: errors.New("upstream 502: secret-key-123 rejected")}
	svc := newService(t, product.NewMemoryStore(product.Seed()), fake, time.Second)

	res, err := svc.Ask(context.Background(), ask.Request{ProductID: "1", Message: "What is the APR?"})

	var de *ask.DownstreamError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "generate", de.Op)
	assert.Equal(t, ask.FailureAnswer, res.Answer)
	assert.Equal(t, ask.StatusFailed, res.Status)
	assert.NotContains(t, res.Answer, "secret")
}

func TestAskStoreFailureIsDownstream(t *testing.T) {
	fake := &aitest.ChatModel{Reply: "unused"}
	svc := newService(t, failingStore{err: errors.New("connection refused")}, fake, time.Second)

	res, err := svc.Ask(context.Background(), ask.Request{ProductID: "1", Message: "hi"})

	var de *ask.DownstreamError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "resolve", de.Op)
	assert.Equal(t, ask.FailureAnswer, res.Answer)
	assert.Zero(t, fake.Calls())
}

func TestAskEmptyGenerationFallsBack(t *testing.T) {
	fake := &aitest.ChatModel{Reply: "   "}
	svc := newService(t, product.NewMemoryStore(product.Seed()), fake, time.Second)

	res, err := svc.Ask(context.Background(), ask.Request{ProductID: "3", Message: "Tell me a joke"})
	require.NoError(t, err)
	assert.Equal(t, ai.FallbackAnswer, res.Answer)
	assert.Equal(t, ask.StatusOK, res.Status)
}

func TestAskTimeoutBoundsGeneration(t *testing.T) {
	fake := &aitest.ChatModel{
		Reply: "late",
		Hook: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	svc := newService(t, product.NewMemoryStore(product.Seed()), fake, 20*time.Millisecond)

	res, err := svc.Ask(context.Background(), ask.Request{ProductID: "1", Message: "hi"})

	var de *ask.DownstreamError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "generate", de.Op)
	assert.Equal(t, ask.FailureAnswer, res.Answer)
}

func TestAskIgnoresClientSnapshot(t *testing.T) {
	fake := &aitest.ChatModel{Reply: "ok"}
	svc := newService(t, product.NewMemoryStore(product.Seed()), fake, time.Second)

	forged, err := json.Marshal(map[string]any{"id": "1", "bank": "Forged Bank", "rate_apr": 0.1})
	require.NoError(t, err)

	_, err = svc.Ask(context.Background(), ask.Request{ProductID: "1", Message: "What is the APR?", Product: forged})
	require.NoError(t, err)

	system := fake.LastInput()[0].Content
	assert.Contains(t, system, "HDFC")
	assert.False(t, strings.Contains(system, "Forged Bank"))
}
