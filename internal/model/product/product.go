package product

import (
	"errors"
	"fmt"
	"strings"
)

// DisbursalSpeed describes how quickly funds reach the borrower.
type DisbursalSpeed string

const (
	DisbursalInstant  DisbursalSpeed = "instant"
	DisbursalFast     DisbursalSpeed = "fast"
	DisbursalStandard DisbursalSpeed = "standard"
)

// DocsLevel describes how much paperwork an application needs.
type DocsLevel string

const (
	DocsLow      DocsLevel = "low"
	DocsStandard DocsLevel = "standard"
)

// Credit score bounds accepted by the catalog.
const (
	MinCreditScore = 300
	MaxCreditScore = 900
)

// Product is a loan product as published by the catalog.
type Product struct {
	ID              string         `json:"id"`
	Bank            string         `json:"bank"`
	Name            string         `json:"name"`
	RateAPR         float64        `json:"rate_apr"`
	MinIncome       int64          `json:"min_income"`
	MinCreditScore  int            `json:"min_credit_score"`
	TenureMinMonths int            `json:"tenure_min_months"`
	TenureMaxMonths int            `json:"tenure_max_months"`
	DisbursalSpeed  DisbursalSpeed `json:"disbursal_speed"`
	DocsLevel       DocsLevel      `json:"docs_level"`
	Summary         string         `json:"summary"`
}

// Valid reports whether the speed is one of the known categories.
func (s DisbursalSpeed) Valid() bool {
	switch s {
	case DisbursalInstant, DisbursalFast, DisbursalStandard:
		return true
	}
	return false
}

// Valid reports whether the level is one of the known categories.
func (d DocsLevel) Valid() bool {
	return d == DocsLow || d == DocsStandard
}

// Validate checks the record invariants. All violations are reported together.
func (p Product) Validate() error {
	var errs []error
	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if p.RateAPR < 0 {
		errs = append(errs, fmt.Errorf("rate_apr must be non-negative, got %v", p.RateAPR))
	}
	if p.MinIncome < 0 {
		errs = append(errs, fmt.Errorf("min_income must be non-negative, got %d", p.MinIncome))
	}
	if p.MinCreditScore < MinCreditScore || p.MinCreditScore > MaxCreditScore {
		errs = append(errs, fmt.Errorf("min_credit_score %d outside [%d, %d]", p.MinCreditScore, MinCreditScore, MaxCreditScore))
	}
	if p.TenureMinMonths < 0 || p.TenureMinMonths > p.TenureMaxMonths {
		errs = append(errs, fmt.Errorf("tenure range %d-%d is invalid", p.TenureMinMonths, p.TenureMaxMonths))
	}
	if !p.DisbursalSpeed.Valid() {
		errs = append(errs, fmt.Errorf("unknown disbursal_speed %q", p.DisbursalSpeed))
	}
	if !p.DocsLevel.Valid() {
		errs = append(errs, fmt.Errorf("unknown docs_level %q", p.DocsLevel))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("product %q: %w", p.ID, errors.Join(errs...))
}

// Seed provides the default catalog, ordered by desirability.
func Seed() []Product {
	return []Product{
		{
			ID:              "1",
			Bank:            "HDFC",
			Name:            "Flexi Personal Loan",
			RateAPR:         11.5,
			MinIncome:       30000,
			MinCreditScore:  700,
			TenureMinMonths: 12,
			TenureMaxMonths: 60,
			DisbursalSpeed:  DisbursalFast,
			DocsLevel:       DocsStandard,
			Summary:         "Unsecured personal loan with flexible part-prepayment after six EMIs and no foreclosure charge after twelve months.",
		},
		{
			ID:              "2",
			Bank:            "ICICI",
			Name:            "Smart Home Loan",
			RateAPR:         8.2,
			MinIncome:       45000,
			MinCreditScore:  720,
			TenureMinMonths: 60,
			TenureMaxMonths: 360,
			DisbursalSpeed:  DisbursalStandard,
			DocsLevel:       DocsStandard,
			Summary:         "Floating-rate home loan for salaried applicants, linked to the repo rate, with balance transfer available.",
		},
		{
			ID:              "3",
			Bank:            "SBI",
			Name:            "Education Loan Plus",
			RateAPR:         9.7,
			MinIncome:       25000,
			MinCreditScore:  680,
			TenureMinMonths: 12,
			TenureMaxMonths: 120,
			DisbursalSpeed:  DisbursalStandard,
			DocsLevel:       DocsLow,
			Summary:         "Covers tuition and living costs for courses in India and abroad, with a moratorium until six months after course completion.",
		},
		{
			ID:              "4",
			Bank:            "Axis",
			Name:            "Vehicle Loan Advantage",
			RateAPR:         10.9,
			MinIncome:       28000,
			MinCreditScore:  650,
			TenureMinMonths: 12,
			TenureMaxMonths: 84,
			DisbursalSpeed:  DisbursalInstant,
			DocsLevel:       DocsLow,
			Summary:         "Financing up to 90% of the on-road price for new cars and two-wheelers, with same-day sanction for existing customers.",
		},
		{
			ID:              "5",
			Bank:            "Kotak",
			Name:            "Credit Line Express",
			RateAPR:         13.5,
			MinIncome:       35000,
			MinCreditScore:  700,
			TenureMinMonths: 3,
			TenureMaxMonths: 36,
			DisbursalSpeed:  DisbursalInstant,
			DocsLevel:       DocsLow,
			Summary:         "Revolving credit line where interest is charged only on the amount drawn, withdrawable from the mobile app.",
		},
	}
}
