package product

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/loan-match/backend/internal/analysis/match"
	"github.com/zhouzirui/loan-match/backend/internal/model/product"
	"github.com/zhouzirui/loan-match/backend/pkg/utils"
)

// Handler serves catalog browsing endpoints.
type Handler struct {
	products product.Store
}

// New creates the catalog handler.
func New(products product.Store) *Handler {
	return &Handler{products: products}
}

// RegisterRoutes mounts the catalog endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.handleList)
	r.Get("/products/top", h.handleTop)
	r.Get("/products/{productID}", h.handleGet)
}

// productView is a product flattened together with its badges.
type productView struct {
	product.Product
	Badges []match.Badge `json:"badges"`
}

func newView(p product.Product) productView {
	return productView{Product: p, Badges: match.Badges(p)}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r.URL.Query())
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.products.List(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load products")
		return
	}

	matched := match.Filter(items, criteria)
	views := make([]productView, 0, len(matched))
	for _, p := range matched {
		views = append(views, newView(p))
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"criteria": criteria,
		"products": views,
	})
}

func (h *Handler) handleTop(w http.ResponseWriter, r *http.Request) {
	n := match.TopN
	if raw := strings.TrimSpace(r.URL.Query().Get("n")); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val <= 0 {
			utils.RespondError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = val
	}

	items, err := h.products.List(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load products")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"products": match.Top(items, n)})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")

	p, err := h.products.FindByID(r.Context(), id)
	if errors.Is(err, product.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	utils.RespondJSON(w, http.StatusOK, newView(p))
}

// parseCriteria overrides the default criteria with any supplied query parameters.
func parseCriteria(q url.Values) (match.Criteria, error) {
	c := match.DefaultCriteria()
	c.Search = strings.TrimSpace(q.Get("search"))

	if raw := strings.TrimSpace(q.Get("maxApr")); raw != "" {
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
			return c, fmt.Errorf("invalid maxApr %q", raw)
		}
		c.MaxAPR = val
	}
	if raw := strings.TrimSpace(q.Get("minIncome")); raw != "" {
		val, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c, fmt.Errorf("invalid minIncome %q", raw)
		}
		c.MinIncome = val
	}
	if raw := strings.TrimSpace(q.Get("minCreditScore")); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil {
			return c, fmt.Errorf("invalid minCreditScore %q", raw)
		}
		c.MinCreditScore = val
	}
	return c, nil
}
