package ask

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	askService "github.com/zhouzirui/loan-match/backend/internal/service/ask"
	"github.com/zhouzirui/loan-match/backend/pkg/utils"
)

const maxBodyBytes = 64 << 10

// Answerer is satisfied by *askService.Service.
type Answerer interface {
	Ask(ctx context.Context, req askService.Request) (askService.Result, error)
}

// Handler serves POST /ask.
type Handler struct {
	svc Answerer
}

// New creates the handler. A nil svc makes every request fail with 503.
func New(svc Answerer) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the question endpoint on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ask", h.handleAsk)
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai service unavailable")
		return
	}

	var req askService.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Ask(r.Context(), req)
	if err == nil {
		utils.RespondAnswer(w, http.StatusOK, res.Answer)
		return
	}

	var (
		validationErr *askService.ValidationError
		notFoundErr   *askService.NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		utils.RespondError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &notFoundErr):
		utils.RespondAnswer(w, http.StatusNotFound, askService.NotFoundAnswer)
	default:
		utils.RespondAnswer(w, http.StatusInternalServerError, askService.FailureAnswer)
	}
}
