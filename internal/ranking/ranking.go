// Package ranking orders ad snapshots for display.
package ranking

import (
	"sort"

	"github.com/adwall/adwall/internal/model"
)

// DefaultCoefficient weights click engagement in the score. The value
// carries no documented business meaning and can be overridden through
// configuration.
const DefaultCoefficient = 0.42

// Score computes the display score for one ad:
//
//	score = pricing + pricing * clicked * k
//
// An ad with zero clicks ranks by bid alone; engagement amplifies higher
// bids faster than lower ones.
func Score(ad model.Ad, k float64) float64 {
	return ad.Pricing + ad.Pricing*float64(ad.Clicked)*k
}

// Rank returns the ads sorted by descending score into a fresh slice.
// The sort is stable, so equal scores keep their original relative order.
// The input is never mutated and empty input yields empty output.
func Rank(ads []model.Ad, k float64) []model.Ad {
	ranked := make([]model.Ad, len(ads))
	copy(ranked, ads)

	sort.SliceStable(ranked, func(i, j int) bool {
		return Score(ranked[i], k) > Score(ranked[j], k)
	})

	return ranked
}
