package match

import "github.com/zhouzirui/loan-match/backend/internal/model/product"

// TopN is the number of products presented as matches.
const TopN = 5

// Ranked annotates a product with its presentation position.
type Ranked struct {
	Rank      int             `json:"rank"`
	BestMatch bool            `json:"bestMatch"`
	Badges    []Badge         `json:"badges"`
	Product   product.Product `json:"product"`
}

// Top selects the first n products and flags the first as the best match.
//
// Top does not score or sort. The input must already be ordered by desirability
// (catalog stores document their order); for an unordered input the result is
// just the first n elements and carries no ranking meaning.
func Top(products []product.Product, n int) []Ranked {
	if n <= 0 {
		n = TopN
	}
	if n > len(products) {
		n = len(products)
	}

	ranked := make([]Ranked, 0, n)
	for i, p := range products[:n] {
		ranked = append(ranked, Ranked{
			Rank:      i + 1,
			BestMatch: i == 0,
			Badges:    Badges(p),
			Product:   p,
		})
	}
	return ranked
}
