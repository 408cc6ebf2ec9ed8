package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zhouzirui/loan-match/backend/internal/handler/ask"
	productHandler "github.com/zhouzirui/loan-match/backend/internal/handler/product"
	middlewarePkg "github.com/zhouzirui/loan-match/backend/internal/middleware"
	"github.com/zhouzirui/loan-match/backend/internal/model/product"
	askService "github.com/zhouzirui/loan-match/backend/internal/service/ask"
	"github.com/zhouzirui/loan-match/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. askSvc may be nil when no chat
// model is configured; limiter may be nil to disable rate limiting.
func NewRouter(products product.Store, askSvc *askService.Service, limiter *middlewarePkg.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	var answerer ask.Answerer
	if askSvc != nil {
		answerer = askSvc
	}
	askHandler := ask.New(answerer)
	catalogHandler := productHandler.New(products)

	registerAsk := func(router chi.Router) {
		router.Group(func(g chi.Router) {
			if limiter != nil {
				g.Use(limiter.Middleware)
			}
			askHandler.RegisterRoutes(g)
		})
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"ai":     askSvc != nil,
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	registerAsk(r)

	r.Route("/api", func(api chi.Router) {
		catalogHandler.RegisterRoutes(api)
		registerAsk(api)
	})

	return r
}
