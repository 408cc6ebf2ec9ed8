package match

import (
	"strings"

	"github.com/zhouzirui/loan-match/backend/internal/model/product"
)

// Criteria holds the user-adjustable eligibility thresholds.
type Criteria struct {
	Search         string  `json:"search"`
	MaxAPR         float64 `json:"maxApr"`
	MinIncome      int64   `json:"minIncome"`
	MinCreditScore int     `json:"minCreditScore"`
}

// DefaultCriteria mirrors the initial position of the search controls.
func DefaultCriteria() Criteria {
	return Criteria{
		MaxAPR:         20,
		MinIncome:      20000,
		MinCreditScore: 600,
	}
}

// Matches reports whether p satisfies every threshold in c.
func (c Criteria) Matches(p product.Product) bool {
	if p.RateAPR > c.MaxAPR {
		return false
	}
	if p.MinIncome < c.MinIncome {
		return false
	}
	if p.MinCreditScore < c.MinCreditScore {
		return false
	}
	if c.Search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Bank), strings.ToLower(c.Search))
}

// Filter returns the products matching c, in input order. The input slice is not modified.
func Filter(products []product.Product, c Criteria) []product.Product {
	out := make([]product.Product, 0, len(products))
	for _, p := range products {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}
