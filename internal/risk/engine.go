// internal/risk/engine.go

// Package risk adjusts an eGL result for a user's health profile.
package risk

import (
	"fmt"
	"math"

	"mcp-glucoguide/internal/glycemic"
	"mcp-glucoguide/internal/models"
	"mcp-glucoguide/internal/recommend"
)

// Bounds for the summed profile modifiers.
const (
	MinTotalModifier = -0.40
	MaxTotalModifier = 0.60
)

type band struct {
	max   float64
	level models.RiskLevel
}

// Ordered upper-inclusive bands. The diabetic scale is finer near zero.
var (
	generalScale = []band{
		{glycemic.LowGLMax, models.RiskLow},
		{glycemic.ModerateGLMax, models.RiskModerate},
		{math.Inf(1), models.RiskHigh},
	}
	diabeticScale = []band{
		{8, models.RiskMinimal},
		{15, models.RiskLow},
		{25, models.RiskModerate},
		{35, models.RiskHigh},
		{math.Inf(1), models.RiskVeryHigh},
	}
)

func scaleFor(status models.HealthStatus) []band {
	if status.UsesDiabeticScale() {
		return diabeticScale
	}
	return generalScale
}

func classify(score float64, scale []band) models.RiskLevel {
	for _, b := range scale {
		if score <= b.max {
			return b.level
		}
	}
	return scale[len(scale)-1].level
}

// Compute applies the profile modifiers to egl.EffectiveGL. The caller skips
// this when no profile exists.
func Compute(egl *models.EGLResult, p models.ProfileContext) *models.RiskScoreResult {
	applied, total, clamped := Modifiers(p)

	score := egl.EffectiveGL * (1 + total)
	if score < 0 {
		score = 0
	}
	score = glycemic.Round1(score)

	res := &models.RiskScoreResult{
		FoodName:             egl.FoodName,
		Portions:             egl.Portions,
		ServingSize:          egl.ServingSize,
		Nutrition:            egl.Nutrition,
		GI:                   egl.GI,
		BaseGL:               egl.BaseGL,
		EffectiveGL:          egl.EffectiveGL,
		HealthStatus:         p.HealthStatus,
		RiskScore:            score,
		RiskLevel:            classify(score, scaleFor(p.HealthStatus)),
		DiabeticScale:        p.HealthStatus.UsesDiabeticScale(),
		TotalModifierPercent: total,
		ModifierClamped:      clamped,
		AppliedModifiers:     applied,
	}
	res.Warnings = warnings(res, egl, p)
	res.Recommendations = recommend.ForRisk(res, egl, p)
	return res
}

// Modifiers evaluates every profile modifier in order and returns the
// non-zero ones, their clamped sum and whether clamping changed the sum.
func Modifiers(p models.ProfileContext) ([]models.AppliedModifier, float64, bool) {
	applied := []models.AppliedModifier{}
	var sum float64
	for _, fn := range modifierOrder {
		m, ok := fn(p)
		if !ok || m.Percent == 0 {
			continue
		}
		applied = append(applied, m)
		sum += m.Percent
	}

	sum = math.Round(sum*10000) / 10000
	total := math.Max(MinTotalModifier, math.Min(MaxTotalModifier, sum))
	return applied, total, total != sum
}

func warnings(res *models.RiskScoreResult, egl *models.EGLResult, p models.ProfileContext) []string {
	out := []string{}
	if p.HealthStatus == models.Type1 {
		out = append(out,
			"Monitor blood glucose 2 hours after this meal.",
			fmt.Sprintf("Consider your insulin-to-carb ratio: this portion has about %.1fg net carbs.", egl.Nutrition.NetCarbs),
		)
	}
	if p.A1C != nil && *p.A1C >= diabeticA1C {
		out = append(out, fmt.Sprintf("Your A1C of %.1f%% is elevated; monitor post-meal glucose.", *p.A1C))
	}
	if res.RiskLevel.Elevated() {
		out = append(out, "This food carries a high glucose risk for your profile.")
	}
	if res.ModifierClamped {
		out = append(out, fmt.Sprintf("Profile adjustments were capped at %+.0f%%.", res.TotalModifierPercent*100))
	}
	return out
}
