// internal/recommend/recommend.go

// Package recommend derives ordered, deterministic guidance text from
// analysis results. Order is always: safety warnings, classification
// guidance, optimization tips.
package recommend

import (
	"fmt"

	"mcp-glucoguide/internal/models"
)

// ForEGL builds guidance for a result computed without a health profile.
func ForEGL(r *models.EGLResult) []string {
	out := spikeGuidance(r)
	if tip := dominantModifierTip(r.Modifiers); tip != "" {
		out = append(out, tip)
	}
	return out
}

// ForRisk builds guidance for a profile-adjusted result. The result's
// warnings lead the list.
func ForRisk(res *models.RiskScoreResult, egl *models.EGLResult, p models.ProfileContext) []string {
	out := make([]string, 0, len(res.Warnings)+6)
	out = append(out, res.Warnings...)
	out = append(out, riskGuidance(res)...)

	if egl != nil {
		if tip := dominantModifierTip(egl.Modifiers); tip != "" {
			out = append(out, tip)
		}
	}
	switch p.ActivityLevel {
	case models.Sedentary, models.LightActivity:
		out = append(out, "A 10-15 minute walk after eating helps your muscles take up glucose.")
	}
	if p.BMI != nil && *p.BMI >= 25 && res.RiskLevel.Elevated() {
		out = append(out, "Smaller portions of high-GL foods support both weight and glucose goals.")
	}
	return out
}

func spikeGuidance(r *models.EGLResult) []string {
	n := r.Nutrition
	var out []string

	switch r.SpikeLevel {
	case models.SpikeHigh:
		out = append(out, "This food has a high insulin spike potential.")
		if n.Protein < 10 {
			out = append(out, "Add a protein source (chicken, fish, eggs, tofu) to slow digestion.")
		}
		if n.Fiber < 5 {
			out = append(out, "Pair with fiber-rich vegetables or salad to reduce the spike.")
		}
		if n.Fat < 5 {
			out = append(out, "Adding healthy fats (avocado, olive oil, nuts) can help.")
		}
		out = append(out,
			"Consider reducing the portion size by 25-50%.",
			"A 15-minute walk after eating can help manage blood sugar.",
		)
	case models.SpikeModerate:
		out = append(out, "This food has a moderate insulin spike potential.")
		if n.Protein < 15 {
			out = append(out, "Adding more protein would help reduce the spike.")
		}
		if n.Fiber < 5 {
			out = append(out, "Adding fiber-rich foods would be beneficial.")
		}
		out = append(out, "Safe to eat in moderation as part of a balanced meal.")
	default:
		out = append(out,
			"This food has a low insulin spike potential.",
			"Safe to eat freely as part of a healthy diet.",
		)
		if n.Protein > 15 {
			out = append(out, "Great protein content helps maintain stable blood sugar.")
		}
		if n.Fiber > 5 {
			out = append(out, "Excellent fiber content for digestive health.")
		}
	}
	return out
}

func riskGuidance(res *models.RiskScoreResult) []string {
	score := fmt.Sprintf("%.1f", res.RiskScore)
	switch res.RiskLevel {
	case models.RiskMinimal:
		return []string{"Minimal expected glucose impact for your profile (risk score " + score + ")."}
	case models.RiskLow:
		return []string{"Low expected glucose impact for your profile (risk score " + score + ")."}
	case models.RiskModerate:
		return []string{
			"Moderate expected glucose impact for your profile (risk score " + score + ").",
			"Eat it alongside protein or vegetables rather than on its own.",
		}
	case models.RiskHigh:
		return []string{
			"High expected glucose impact for your profile (risk score " + score + ").",
			"Consider halving the portion or swapping for a lower-GI alternative.",
		}
	default:
		return []string{
			"Very high expected glucose impact for your profile (risk score " + score + ").",
			"This food is best avoided or replaced with a lower-GI alternative.",
		}
	}
}

// dominantModifierTip praises the largest macronutrient reduction. Ties go
// to fiber, then protein, then fat.
func dominantModifierTip(m models.ModifierSet) string {
	switch {
	case m.Fiber <= 0 && m.Protein <= 0 && m.Fat <= 0:
		return ""
	case m.Fiber >= m.Protein && m.Fiber >= m.Fat:
		return "The fiber in this food helped the most; keep choosing fiber-rich sides."
	case m.Protein >= m.Fat:
		return "Pairing with protein helped; continue this pattern."
	default:
		return "The fat in this food slowed absorption; favor unsaturated fats for the same effect."
	}
}
