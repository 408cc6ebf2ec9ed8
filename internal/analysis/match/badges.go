package match

import "github.com/zhouzirui/loan-match/backend/internal/model/product"

// Badge is a short qualitative label shown next to a product.
type Badge string

const (
	BadgeLowAPR            Badge = "Low APR"
	BadgeFastDisbursal     Badge = "Fast Disbursal"
	BadgeLowDocs           Badge = "Low Docs"
	BadgeLowIncomeEligible Badge = "Low Income Eligible"
)

const (
	// MaxBadges caps how many badges a single product can carry.
	MaxBadges = 3

	lowAPRThreshold    = 10.0
	lowIncomeThreshold = 35000
)

type badgeRule struct {
	badge Badge
	match func(product.Product) bool
}

// badgeRules is evaluated top to bottom; earlier rules win when the cap is reached.
var badgeRules = [...]badgeRule{
	{BadgeLowAPR, func(p product.Product) bool { return p.RateAPR < lowAPRThreshold }},
	{BadgeFastDisbursal, func(p product.Product) bool {
		return p.DisbursalSpeed == product.DisbursalFast || p.DisbursalSpeed == product.DisbursalInstant
	}},
	{BadgeLowDocs, func(p product.Product) bool { return p.DocsLevel == product.DocsLow }},
	{BadgeLowIncomeEligible, func(p product.Product) bool { return p.MinIncome < lowIncomeThreshold }},
}

// Badges derives at most MaxBadges labels for p.
func Badges(p product.Product) []Badge {
	badges := make([]Badge, 0, MaxBadges)
	for _, rule := range badgeRules {
		if len(badges) == MaxBadges {
			break
		}
		if rule.match(p) {
			badges = append(badges, rule.badge)
		}
	}
	return badges
}
