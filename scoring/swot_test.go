package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Mukhsinh/manajemenresiko-sub007/apperr"
	"github.com/Mukhsinh/manajemenresiko-sub007/models"
)

func swot(category string, weight, rank int) models.SwotItem {
	return models.SwotItem{Category: category, Weight: weight, Rank: rank}
}

func TestCheckWeightBudget(t *testing.T) {
	assert.NoError(t, CheckWeightBudget("Strength", 60, 40))
	assert.ErrorIs(t, CheckWeightBudget("Strength", 60, 41), apperr.ErrValidation)
	assert.ErrorIs(t, CheckWeightBudget("Strength", 0, -1), apperr.ErrValidation)
	assert.ErrorIs(t, CheckWeightBudget("Strength", 0, 101), apperr.ErrValidation)
}

func TestSummarizeSwot(t *testing.T) {
	items := []models.SwotItem{
		swot(models.SwotStrength, 60, 4),
		swot(models.SwotStrength, 40, 3),
		swot(models.SwotWeakness, 100, 2),
		swot(models.SwotOpportunity, 50, 3),
		swot(models.SwotThreat, 70, 4),
		swot("Unknown", 10, 1),
	}

	s := SummarizeSwot(items)

	assert.Len(t, s.Categories, 4)
	strength := s.Categories[0]
	assert.Equal(t, models.SwotStrength, strength.Category)
	assert.Equal(t, 2, strength.Items)
	assert.Equal(t, 100, strength.WeightSum)
	assert.Equal(t, 360, strength.ScoreSum)
	assert.InDelta(t, 3.6, strength.Weighted, 1e-9)
	assert.True(t, strength.Balanced)

	opportunity := s.Categories[2]
	assert.False(t, opportunity.Balanced)

	assert.InDelta(t, 1.6, s.X, 1e-9)
	assert.InDelta(t, 1.5-2.8, s.Y, 1e-9)
	assert.Equal(t, "IV", s.Quadrant)
}

func TestQuadrants(t *testing.T) {
	q, _ := quadrant(1, 1)
	assert.Equal(t, "I", q)
	q, _ = quadrant(-1, 1)
	assert.Equal(t, "II", q)
	q, _ = quadrant(-1, -1)
	assert.Equal(t, "III", q)
	q, _ = quadrant(1, -1)
	assert.Equal(t, "IV", q)
}
