// internal/glycemic/base.go
package glycemic

import (
	"math"

	apperrors "mcp-glucoguide/internal/errors"
	"mcp-glucoguide/internal/models"
)

// BaseLoad is the output of the base load stage.
type BaseLoad struct {
	TotalGrams float64
	Nutrition  models.NutritionFacts // scaled to TotalGrams
	NetCarbs   float64
	GI         float64
	BaseGL     float64
}

// ValidatePortion rejects non-positive servings or serving sizes.
func ValidatePortion(p models.Portion) error {
	if !(p.Servings > 0) || math.IsInf(p.Servings, 0) {
		return apperrors.Newf(apperrors.InvalidPortion, "servings must be positive, got %v", p.Servings)
	}
	if !(p.ServingSizeGrams > 0) || math.IsInf(p.ServingSizeGrams, 0) {
		return apperrors.Newf(apperrors.InvalidPortion, "serving size must be positive, got %v g", p.ServingSizeGrams)
	}
	return nil
}

// CalculateBaseLoad scales per-100 g facts to the portion and computes
// net carbohydrate and base glycemic load.
func CalculateBaseLoad(per100g models.NutritionFacts, portion models.Portion, gi float64) (BaseLoad, error) {
	if err := ValidatePortion(portion); err != nil {
		return BaseLoad{}, err
	}

	total := portion.TotalGrams()
	scaled := sanitize(per100g).Scale(total / 100)
	gi = clampGI(gi)
	net := scaled.NetCarbs()

	return BaseLoad{
		TotalGrams: total,
		Nutrition:  scaled,
		NetCarbs:   net,
		GI:         gi,
		BaseGL:     gi * net / 100,
	}, nil
}

func sanitize(n models.NutritionFacts) models.NutritionFacts {
	return models.NutritionFacts{
		Carbs:   nonNegative(n.Carbs),
		Protein: nonNegative(n.Protein),
		Fat:     nonNegative(n.Fat),
		Fiber:   nonNegative(n.Fiber),
	}
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

func clampGI(gi float64) float64 {
	if math.IsNaN(gi) || gi < MinGI {
		return MinGI
	}
	if gi > MaxGI {
		return MaxGI
	}
	return gi
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
