package scoring

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
)

const WeightTotal = 100

// CategoryTotal aggregates the factors of one SWOT category.
type CategoryTotal struct {
	Category  string  `json:"category"`
	Items     int     `json:"items"`
	WeightSum int     `json:"weightSum"`
	ScoreSum  int     `json:"scoreSum"`
	Weighted  float64 `json:"weighted"` // ScoreSum / 100, the weighted average rank
	Balanced  bool    `json:"balanced"`
}

// SwotSummary positions a unit on the SWOT diagram.
type SwotSummary struct {
	Categories []CategoryTotal `json:"categories"`
	X          float64         `json:"x"` // strength − weakness
	Y          float64         `json:"y"` // opportunity − threat
	Quadrant   string          `json:"quadrant"`
	Strategy   string          `json:"strategy"`
}

// CheckWeightBudget fails if adding weight to the existing total passes 100.
func CheckWeightBudget(scope string, existing, weight int) error {
	if weight < 0 || weight > WeightTotal {
		return goerr.Wrap(apperr.Validation("weight must be between 0 and %d", WeightTotal), "weight check", goerr.V("weight", weight))
	}
	if existing+weight > WeightTotal {
		return goerr.Wrap(apperr.Validation("total weight for %s would be %d, maximum is %d", scope, existing+weight, WeightTotal),
			"weight budget", goerr.V("existing", existing), goerr.V("weight", weight))
	}
	return nil
}

// SummarizeSwot totals the given items by category and derives the diagram quadrant.
func SummarizeSwot(items []models.SwotItem) SwotSummary {
	totals := make(map[string]*CategoryTotal, len(models.SwotCategories))
	for _, c := range models.SwotCategories {
		totals[c] = &CategoryTotal{Category: c}
	}
	for _, it := range items {
		t, ok := totals[it.Category]
		if !ok {
			continue
		}
		t.Items++
		t.WeightSum += it.Weight
		t.ScoreSum += it.Weight * it.Rank
	}

	s := SwotSummary{}
	for _, c := range models.SwotCategories {
		t := totals[c]
		t.Weighted = float64(t.ScoreSum) / WeightTotal
		t.Balanced = t.WeightSum == WeightTotal
		s.Categories = append(s.Categories, *t)
	}

	s.X = totals[models.SwotStrength].Weighted - totals[models.SwotWeakness].Weighted
	s.Y = totals[models.SwotOpportunity].Weighted - totals[models.SwotThreat].Weighted
	s.Quadrant, s.Strategy = quadrant(s.X, s.Y)
	return s
}

func quadrant(x, y float64) (string, string) {
	switch {
	case x >= 0 && y >= 0:
		return "I", "SO: agresif, manfaatkan kekuatan untuk meraih peluang"
	case x < 0 && y >= 0:
		return "II", "WO: turn-around, benahi kelemahan untuk meraih peluang"
	case x < 0 && y < 0:
		return "III", "WT: defensif, kurangi kelemahan dan hindari ancaman"
	default:
		return "IV", "ST: diversifikasi, gunakan kekuatan untuk menghadapi ancaman"
	}
}
