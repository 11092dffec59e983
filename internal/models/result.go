// internal/models/result.go
package models

import "time"

type SpikeLevel string

const (
	SpikeLow      SpikeLevel = "low"
	SpikeModerate SpikeLevel = "moderate"
	SpikeHigh     SpikeLevel = "high"
)

// Severity orders spike levels, higher is worse.
func (s SpikeLevel) Severity() int {
	switch s {
	case SpikeLow:
		return 0
	case SpikeModerate:
		return 1
	case SpikeHigh:
		return 2
	}
	return -1
}

type RiskLevel string

const (
	RiskMinimal  RiskLevel = "minimal"
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// Elevated is true for the high end of either classification scale.
func (r RiskLevel) Elevated() bool {
	return r == RiskHigh || r == RiskVeryHigh
}

type NutritionBreakdown struct {
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	NetCarbs float64 `json:"net_carbs"`
}

// ModifierSet holds the fractional load reductions from macronutrients.
type ModifierSet struct {
	Fiber   float64 `json:"fiber_modifier"`
	Protein float64 `json:"protein_modifier"`
	Fat     float64 `json:"fat_modifier"`
}

// Sum is the raw additive total before the global ceiling.
func (m ModifierSet) Sum() float64 {
	return m.Fiber + m.Protein + m.Fat
}

type EGLResult struct {
	FoodName                  string             `json:"food_name"`
	Portions                  float64            `json:"portions"`
	ServingSize               float64            `json:"serving_size"`
	Nutrition                 NutritionBreakdown `json:"nutrition"`
	GI                        float64            `json:"gi"`
	BaseGL                    float64            `json:"base_gl"`
	EffectiveGL               float64            `json:"effective_gl"`
	Modifiers                 ModifierSet        `json:"modifiers"`
	TotalReductionPercent     float64            `json:"total_reduction_percent"` // fraction, 0.2 means 20%
	SpikeLevel                SpikeLevel         `json:"spike_level"`
	SpikeLevelBeforeModifiers SpikeLevel         `json:"spike_level_before_modifiers"`
	SpikeImproved             bool               `json:"spike_improved"`
	Recommendations           []string           `json:"recommendations"`
	Explanation               string             `json:"explanation"`
}

// AppliedModifier is one non-zero contributor to a risk score.
type AppliedModifier struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"` // signed fraction
	Reason  string  `json:"reason"`
}

type RiskScoreResult struct {
	FoodName             string             `json:"food_name"`
	Portions             float64            `json:"portions"`
	ServingSize          float64            `json:"serving_size"`
	Nutrition            NutritionBreakdown `json:"nutrition"`
	GI                   float64            `json:"gi"`
	BaseGL               float64            `json:"base_gl"`
	EffectiveGL          float64            `json:"effective_gl"`
	HealthStatus         HealthStatus       `json:"health_status"`
	RiskScore            float64            `json:"risk_score"`
	RiskLevel            RiskLevel          `json:"risk_level"`
	DiabeticScale        bool               `json:"diabetic_scale"`
	TotalModifierPercent float64            `json:"total_modifier_percent"`
	ModifierClamped      bool               `json:"modifier_clamped"`
	AppliedModifiers     []AppliedModifier  `json:"applied_modifiers"`
	Warnings             []string           `json:"warnings"`
	Recommendations      []string           `json:"recommendations"`
}

// Analysis is a logged analysis, written by the server after each call.
type Analysis struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id,omitempty"`
	FoodName    string     `json:"food_name"`
	Portions    float64    `json:"portions"`
	BaseGL      float64    `json:"base_gl"`
	EffectiveGL float64    `json:"effective_gl"`
	SpikeLevel  SpikeLevel `json:"spike_level"`
	RiskScore   *float64   `json:"risk_score,omitempty"`
	RiskLevel   RiskLevel  `json:"risk_level,omitempty"`
	Payload     string     `json:"payload,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
