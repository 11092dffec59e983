// internal/glycemic/modifiers.go
package glycemic

import (
	"math"

	"mcp-glucoguide/internal/models"
)

// FiberModifier grows linearly with fiber grams up to MaxFiberModifier.
func FiberModifier(grams float64) float64 {
	return rate(grams, FiberRatePerGram, MaxFiberModifier)
}

// ProteinModifier models slower gastric emptying.
func ProteinModifier(grams float64) float64 {
	return rate(grams, ProteinRatePerGram, MaxProteinModifier)
}

// FatModifier models delayed carbohydrate absorption.
func FatModifier(grams float64) float64 {
	return rate(grams, FatRatePerGram, MaxFatModifier)
}

func rate(grams, perGram, limit float64) float64 {
	if !(grams > 0) {
		return 0
	}
	return round4(math.Min(limit, grams*perGram))
}

// Modifiers computes all three reductions from nutrient grams of the whole portion.
func Modifiers(scaled models.NutritionFacts) models.ModifierSet {
	return models.ModifierSet{
		Fiber:   FiberModifier(scaled.Fiber),
		Protein: ProteinModifier(scaled.Protein),
		Fat:     FatModifier(scaled.Fat),
	}
}

// TotalReduction adds the modifiers and clamps the sum to MaxTotalReduction.
func TotalReduction(m models.ModifierSet) float64 {
	total := m.Sum()
	if total < 0 {
		return 0
	}
	if total > MaxTotalReduction {
		return MaxTotalReduction
	}
	return round4(total)
}

// EffectiveGL applies a total reduction to a base load, floored at zero.
func EffectiveGL(baseGL, totalReduction float64) float64 {
	egl := baseGL * (1 - totalReduction)
	if egl < 0 {
		return 0
	}
	return egl
}
