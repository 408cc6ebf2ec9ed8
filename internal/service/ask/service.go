// Package ask answers questions about one catalog product using only that product's data.
package ask

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/loan-match/backend/internal/model/chat"
	"github.com/zhouzirui/loan-match/backend/internal/model/product"
	"github.com/zhouzirui/loan-match/backend/internal/observability"
	"github.com/zhouzirui/loan-match/backend/internal/service/ai"
)

// Generator produces a reply for a grounded prompt. *ai.Generator implements it.
type Generator interface {
	Generate(ctx context.Context, p product.Product, history []chat.Message, question string) (*schema.Message, error)
}

// Service validates, resolves, prompts and sanitizes. It holds no per-request state.
type Service struct {
	products  product.Store
	generator Generator
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewService wires the catalog and generator. A non-positive timeout leaves deadlines to ctx.
func NewService(products product.Store, generator Generator, timeout time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		products:  products,
		generator: generator,
		timeout:   timeout,
		logger:    observability.Component(logger, "ask"),
	}
}

// Ask answers req. The returned error is one of *ValidationError, *NotFoundError or
// *DownstreamError; Result always carries a client-safe answer for the latter two.
func (s *Service) Ask(ctx context.Context, req Request) (Result, error) {
	history, err := req.validate()
	if err != nil {
		observability.AskRequests.WithLabelValues(observability.OutcomeInvalid).Inc()
		return Result{}, err
	}

	productID := strings.TrimSpace(req.ProductID)
	logger := s.logger.With().Str("product_id", productID).Logger()

	if len(req.Product) > 0 {
		logger.Debug().Int("bytes", len(req.Product)).Msg("ignoring client product snapshot")
	}

	p, err := s.products.FindByID(ctx, productID)
	if errors.Is(err, product.ErrNotFound) {
		observability.AskRequests.WithLabelValues(observability.OutcomeNotFound).Inc()
		return Result{Answer: NotFoundAnswer, Status: StatusNotFound}, &NotFoundError{ProductID: productID}
	}
	if err != nil {
		logger.Error().Err(err).Msg("resolve product")
		observability.AskRequests.WithLabelValues(observability.OutcomeFailed).Inc()
		return Result{Answer: FailureAnswer, Status: StatusFailed}, &DownstreamError{Op: "resolve", Err: err}
	}

	genCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	msg, err := s.generator.Generate(genCtx, p, history, strings.TrimSpace(req.Message))
	observability.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Error().Err(err).Int("history", len(history)).Msg("generate answer")
		observability.AskRequests.WithLabelValues(observability.OutcomeFailed).Inc()
		return Result{Answer: FailureAnswer, Status: StatusFailed}, &DownstreamError{Op: "generate", Err: err}
	}

	answer, grounded := ai.AnswerText(msg)
	if grounded {
		observability.AskRequests.WithLabelValues(observability.OutcomeAnswered).Inc()
	} else {
		logger.Warn().Msg("empty generation, using fallback answer")
		observability.AskRequests.WithLabelValues(observability.OutcomeFallback).Inc()
	}

	logger.Info().Int("history", len(history)).Int("answer_len", len(answer)).Msg("answered question")
	return Result{Answer: answer, Status: StatusOK}, nil
}
