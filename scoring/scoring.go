// Package scoring rates risks and opportunities on the 5×5 probability × impact
// matrix and summarises SWOT factor lists.
package scoring

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
)

const (
	MinScale = 1
	MaxScale = 5
)

const (
	LevelLow     = "Low"
	LevelMedium  = "Medium"
	LevelHigh    = "High"
	LevelExtreme = "Extreme"
)

// Levels in ascending severity.
var Levels = []string{LevelLow, LevelMedium, LevelHigh, LevelExtreme}

// CheckScale rejects values outside 1–5.
func CheckScale(field string, v int) error {
	if v < MinScale || v > MaxScale {
		return goerr.Wrap(apperr.Validation("%s must be between %d and %d", field, MinScale, MaxScale), "scale check", goerr.V(field, v))
	}
	return nil
}

// Level maps a 1–25 score onto its band.
func Level(score int) string {
	switch {
	case score >= 16:
		return LevelExtreme
	case score >= 10:
		return LevelHigh
	case score >= 5:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Assess validates probability and impact and fills in score and level.
func Assess(probability, impact int) (models.Assessment, error) {
	if err := CheckScale("probability", probability); err != nil {
		return models.Assessment{}, err
	}
	if err := CheckScale("impact", impact); err != nil {
		return models.Assessment{}, err
	}
	score := probability * impact
	return models.Assessment{
		Probability: probability,
		Impact:      impact,
		Score:       score,
		Level:       Level(score),
	}, nil
}

// CheckResidual enforces that mitigation cannot make a risk worse than its inherent rating.
func CheckResidual(inherent, residual models.Assessment) error {
	if residual.Score > inherent.Score {
		return apperr.Validation("residual score %d exceeds inherent score %d", residual.Score, inherent.Score)
	}
	return nil
}

// HeatMap counts assessments per matrix cell. Cells[p-1][i-1] holds probability p, impact i.
type HeatMap struct {
	Cells   [MaxScale][MaxScale]int `json:"cells"`
	ByLevel map[string]int          `json:"byLevel"`
	Total   int                     `json:"total"`
}

func NewHeatMap() *HeatMap {
	hm := &HeatMap{ByLevel: make(map[string]int, len(Levels))}
	for _, l := range Levels {
		hm.ByLevel[l] = 0
	}
	return hm
}

// Add ignores assessments that were never rated.
func (h *HeatMap) Add(a models.Assessment) {
	if a.Probability < MinScale || a.Probability > MaxScale || a.Impact < MinScale || a.Impact > MaxScale {
		return
	}
	h.Cells[a.Probability-1][a.Impact-1]++
	h.ByLevel[Level(a.Probability*a.Impact)]++
	h.Total++
}
