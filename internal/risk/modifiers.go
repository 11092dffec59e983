// internal/risk/modifiers.go
package risk

import (
	"fmt"
	"math"

	"mcp-glucoguide/internal/models"
)

// Percentages are signed fractions of the risk baseline.
const (
	InsulinResistanceMild    = 0.15
	InsulinResistanceDefault = 0.20
	InsulinResistanceSevere  = 0.25
	PrediabetesPercent       = 0.15
	Type2Percent             = 0.20

	DurationStepYears   = 5.0
	DurationStepPercent = 0.05
	MaxDurationPercent  = 0.15

	OverweightPercent     = 0.05
	ObesePercent          = 0.10
	PrediabeticA1CPercent = 0.10
	DiabeticA1CPercent    = 0.20

	MetforminPercent = -0.10
	GLP1Percent      = -0.15

	SeniorPercent  = 0.05
	ElderlyPercent = 0.10
)

// Clinical thresholds: WHO BMI bands, ADA A1C and fasting glucose ranges.
const (
	overweightBMI          = 25.0
	obeseBMI               = 30.0
	prediabeticA1C         = 5.7
	diabeticA1C            = 6.5
	seniorAge              = 60
	elderlyAge             = 75
	impairedFastingGlucose = 100.0
	diabeticFastingGlucose = 126.0
)

var activityPercent = map[models.ActivityLevel]float64{
	models.Sedentary:        0.10,
	models.LightActivity:    0.05,
	models.ModerateActivity: 0,
	models.Active:           -0.10,
	models.VeryActive:       -0.15,
}

type modifierFunc func(models.ProfileContext) (models.AppliedModifier, bool)

// modifierOrder is the fixed evaluation order. It only affects the order of
// AppliedModifiers; the combination itself is a plain sum.
var modifierOrder = []modifierFunc{
	healthStatusModifier,
	durationModifier,
	bmiModifier,
	activityModifier,
	a1cModifier,
	medicationModifier,
	ageModifier,
}

func healthStatusModifier(p models.ProfileContext) (models.AppliedModifier, bool) {
	switch p.HealthStatus {
	case models.InsulinResistance:
		pct, reason := insulinResistanceSeverity(p.FastingGlucose)
		return models.AppliedModifier{Name: "health_status", Percent: pct, Reason: reason}, true
	case models.Prediabetes:
		return models.AppliedModifier{Name: "health_status", Percent: PrediabetesPercent, Reason: "prediabetes"}, true
	case models.Type2:
		return models.AppliedModifier{Name: "health_status", Percent: Type2Percent, Reason: "type 2 diabetes"}, true
	}
	// type1 runs in carb-sensitive mode: no flat percentage.
	return models.AppliedModifier{}, false
}

func insulinResistanceSeverity(fasting *float64) (float64, string) {
	if fasting == nil {
		return InsulinResistanceDefault, "insulin resistance"
	}
	switch {
	case *fasting < impairedFastingGlucose:
		return InsulinResistanceMild, fmt.Sprintf("insulin resistance (fasting glucose %.0f mg/dL)", *fasting)
	case *fasting < diabeticFastingGlucose:
		return InsulinResistanceDefault, fmt.Sprintf("insulin resistance (fasting glucose %.0f mg/dL)", *fasting)
	default:
		return InsulinResistanceSevere, fmt.Sprintf("insulin resistance (fasting glucose %.0f mg/dL)", *fasting)
	}
}

func durationModifier(p models.ProfileContext) (models.AppliedModifier, bool) {
	if !p.HealthStatus.IsDiabetic() || p.DiabetesDurationYears == nil {
		return models.AppliedModifier{}, false
	}
	steps := math.Floor(*p.DiabetesDurationYears / DurationStepYears)
	pct := math.Min(MaxDurationPercent, steps*DurationStepPercent)
	if pct <= 0 {
		return models.AppliedModifier{}, false
	}
	return models.AppliedModifier{
		Name:    "diabetes_duration",
		Percent: pct,
		Reason:  fmt.Sprintf("diabetes for %.0f years", *p.DiabetesDurationYears),
	}, true
}

func bmiModifier(p models.ProfileContext) (models.AppliedModifier, bool) {
	if p.BMI == nil {
		return models.AppliedModifier{}, false
	}
	bmi := *p.BMI
	switch {
	case bmi >= obeseBMI:
		return models.AppliedModifier{Name: "bmi", Percent: ObesePercent, Reason: fmt.Sprintf("BMI %.1f (obese)", bmi)}, true
	case bmi >= overweightBMI:
		return models.AppliedModifier{Name: "bmi", Percent: OverweightPercent, Reason: fmt.Sprintf("BMI %.1f (overweight)", bmi)}, true
	}
	return models.AppliedModifier{}, false
}

func activityModifier(p models.ProfileContext) (models.AppliedModifier, bool) {
	pct := activityPercent[p.ActivityLevel]
	if pct == 0 {
		return models.AppliedModifier{}, false
	}
	return models.AppliedModifier{
		Name:    "activity",
		Percent: pct,
		Reason:  fmt.Sprintf("%s activity level", p.ActivityLevel),
	}, true
}

func a1cModifier(p models.ProfileContext) (models.AppliedModifier, bool) {
	if p.A1C == nil {
		return models.AppliedModifier{}, false
	}
	a1c := *p.A1C
	switch {
	case a1c >= diabeticA1C:
		return models.AppliedModifier{Name: "a1c", Percent: DiabeticA1CPercent, Reason: fmt.Sprintf("A1C %.1f%% (diabetic range)", a1c)}, true
	case a1c >= prediabeticA1C:
		return models.AppliedModifier{Name: "a1c", Percent: PrediabeticA1CPercent, Reason: fmt.Sprintf("A1C %.1f%% (prediabetic range)", a1c)}, true
	}
	return models.AppliedModifier{}, false
}

// medicationModifier applies only the single largest reduction.
func medicationModifier(p models.ProfileContext) (models.AppliedModifier, bool) {
	best := models.AppliedModifier{}
	if p.Takes(models.Metformin) {
		best = models.AppliedModifier{Name: "medication", Percent: MetforminPercent, Reason: "metformin"}
	}
	if p.Takes(models.GLP1) && GLP1Percent < best.Percent {
		best = models.AppliedModifier{Name: "medication", Percent: GLP1Percent, Reason: "GLP-1 agonist"}
	}
	return best, best.Percent != 0
}

func ageModifier(p models.ProfileContext) (models.AppliedModifier, bool) {
	if p.Age == nil {
		return models.AppliedModifier{}, false
	}
	switch {
	case *p.Age >= elderlyAge:
		return models.AppliedModifier{Name: "age", Percent: ElderlyPercent, Reason: fmt.Sprintf("age %d", *p.Age)}, true
	case *p.Age >= seniorAge:
		return models.AppliedModifier{Name: "age", Percent: SeniorPercent, Reason: fmt.Sprintf("age %d", *p.Age)}, true
	}
	return models.AppliedModifier{}, false
}
