package match

import (
	"testing"

	"github.com/zhouzirui/loan-match/backend/internal/model/product"
)

func TestTopFlagsOnlyFirstAsBestMatch(t *testing.T) {
	ranked := Top(product.Seed(), TopN)
	if len(ranked) != 5 {
		t.Fatalf("expected 5 ranked products, got %d", len(ranked))
	}
	for i, r := range ranked {
		if r.Rank != i+1 {
			t.Fatalf("expected rank %d, got %d", i+1, r.Rank)
		}
		if r.BestMatch != (i == 0) {
			t.Fatalf("unexpected best match flag at %d", i)
		}
	}
	if ranked[0].Product.ID != "1" {
		t.Fatalf("expected upstream order to be kept, got %s first", ranked[0].Product.ID)
	}
}

func TestTopLimitsToN(t *testing.T) {
	ranked := Top(product.Seed(), 2)
	if len(ranked) != 2 {
		t.Fatalf("expected 2, got %d", len(ranked))
	}
}

func TestTopDefaultsAndShortInput(t *testing.T) {
	seed := product.Seed()[:3]
	if got := Top(seed, 0); len(got) != 3 {
		t.Fatalf("expected all 3 products, got %d", len(got))
	}
	if got := Top(nil, TopN); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}
