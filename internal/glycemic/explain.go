// internal/glycemic/explain.go
package glycemic

import (
	"fmt"
	"strings"

	"mcp-glucoguide/internal/models"
)

// Explain renders a short multi-line summary of an eGL calculation.
func Explain(r *models.EGLResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analysis for %s\n\n", titleCase(r.FoodName))
	b.WriteString("Nutritional breakdown (per portion eaten):\n")
	fmt.Fprintf(&b, "- Carbohydrates: %.1fg\n", r.Nutrition.Carbs)
	fmt.Fprintf(&b, "- Fiber: %.1fg (net carbs: %.1fg)\n", r.Nutrition.Fiber, r.Nutrition.NetCarbs)
	fmt.Fprintf(&b, "- Protein: %.1fg\n", r.Nutrition.Protein)
	fmt.Fprintf(&b, "- Fat: %.1fg\n", r.Nutrition.Fat)
	fmt.Fprintf(&b, "- Glycemic index: %.0f\n\n", r.GI)

	b.WriteString("Glycemic load:\n")
	fmt.Fprintf(&b, "- Base GL: %.1f (%s spike)\n", r.BaseGL, upper(r.SpikeLevelBeforeModifiers))

	if r.TotalReductionPercent <= 0 {
		fmt.Fprintf(&b, "- Effective GL: %.1f (no significant modifiers)", r.EffectiveGL)
		return b.String()
	}

	b.WriteString("\nMacronutrient modifiers:\n")
	if r.Modifiers.Fiber > 0 {
		fmt.Fprintf(&b, "- Fiber: -%.0f%% (fiber slows digestion)\n", r.Modifiers.Fiber*100)
	}
	if r.Modifiers.Protein > 0 {
		fmt.Fprintf(&b, "- Protein: -%.0f%% (protein slows gastric emptying)\n", r.Modifiers.Protein*100)
	}
	if r.Modifiers.Fat > 0 {
		fmt.Fprintf(&b, "- Fat: -%.0f%% (fat delays absorption)\n", r.Modifiers.Fat*100)
	}
	if r.TotalReductionPercent < r.Modifiers.Sum() {
		fmt.Fprintf(&b, "- Combined reduction capped at %.0f%%\n", r.TotalReductionPercent*100)
	}

	fmt.Fprintf(&b, "\n- Effective GL: %.1f (%s spike)", r.EffectiveGL, upper(r.SpikeLevel))
	if r.SpikeImproved {
		fmt.Fprintf(&b, "\n- The protein, fat and fiber in this food lowered the spike from %s to %s.",
			upper(r.SpikeLevelBeforeModifiers), upper(r.SpikeLevel))
	}
	return b.String()
}

func upper(level models.SpikeLevel) string {
	return strings.ToUpper(string(level))
}
