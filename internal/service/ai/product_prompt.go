package ai

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zhouzirui/loan-match/backend/internal/model/product"
)

// RefusalSentence is the exact reply the model must give when the product facts do not cover a question.
const RefusalSentence = "I can only answer questions about this loan product based on its published details."

// FallbackAnswer replaces an empty generation result.
const FallbackAnswer = "I cannot answer that."

// BuildSystemPrompt renders the grounding instructions and every product fact verbatim.
func BuildSystemPrompt(p product.Product) string {
	var b strings.Builder

	b.WriteString("You are a helpful assistant for a single loan product.\n")
	b.WriteString("Answer the user's questions strictly from the product facts below. ")
	b.WriteString("Do not use outside knowledge, do not guess, and do not discuss other products.\n")
	fmt.Fprintf(&b, "If a question cannot be answered from these facts, reply exactly: %q\n\n", RefusalSentence)

	b.WriteString("Product facts:\n")
	fmt.Fprintf(&b, "- ID: %s\n", p.ID)
	fmt.Fprintf(&b, "- Bank: %s\n", p.Bank)
	fmt.Fprintf(&b, "- Product name: %s\n", p.Name)
	fmt.Fprintf(&b, "- APR: %s%%\n", FormatAPR(p.RateAPR))
	fmt.Fprintf(&b, "- Minimum monthly income: %s\n", FormatIncome(p.MinIncome))
	fmt.Fprintf(&b, "- Minimum credit score: %d\n", p.MinCreditScore)
	fmt.Fprintf(&b, "- Tenure: %d to %d months\n", p.TenureMinMonths, p.TenureMaxMonths)
	fmt.Fprintf(&b, "- Disbursal speed: %s\n", p.DisbursalSpeed)
	fmt.Fprintf(&b, "- Documentation level: %s\n", p.DocsLevel)
	fmt.Fprintf(&b, "- Summary: %s", p.Summary)

	return b.String()
}

// FormatAPR prints the rate without float noise, e.g. 11.5 rather than 11.500000.
func FormatAPR(rate float64) string {
	return decimal.NewFromFloat(rate).String()
}

// FormatIncome prints an income threshold as a plain integer.
func FormatIncome(income int64) string {
	return decimal.NewFromInt(income).String()
}
