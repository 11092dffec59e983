// internal/profile/profile.go

// Package profile normalizes stored, possibly partial, health profiles into
// the ProfileContext consumed by the risk engine.
package profile

import (
	"context"
	"math"
	"strings"

	apperrors "mcp-glucoguide/internal/errors"
	"mcp-glucoguide/internal/models"
)

// Loader is the profile retrieval contract. A nil context with a nil error
// means the user has no profile and only the general eGL applies.
type Loader interface {
	LoadProfile(ctx context.Context, userID string) (*models.ProfileContext, error)
}

// Raw mirrors what the profile store and onboarding forms carry. Every
// field is optional.
type Raw struct {
	HealthStatus          string   `json:"health_status,omitempty" yaml:"health_status,omitempty"`
	HasInsulinResistance  *bool    `json:"has_insulin_resistance,omitempty" yaml:"has_insulin_resistance,omitempty"`
	DiabetesType          string   `json:"diabetes_type,omitempty" yaml:"diabetes_type,omitempty"`
	Age                   *int     `json:"age,omitempty" yaml:"age,omitempty"`
	HeightCm              *float64 `json:"height_cm,omitempty" yaml:"height_cm,omitempty"`
	WeightKg              *float64 `json:"weight_kg,omitempty" yaml:"weight_kg,omitempty"`
	ActivityLevel         string   `json:"activity_level,omitempty" yaml:"activity_level,omitempty"`
	A1C                   *float64 `json:"a1c,omitempty" yaml:"a1c,omitempty"`
	FastingGlucose        *float64 `json:"fasting_glucose,omitempty" yaml:"fasting_glucose,omitempty"`
	DiabetesDurationYears *float64 `json:"diabetes_duration_years,omitempty" yaml:"diabetes_duration_years,omitempty"`
	Medications           []string `json:"medications,omitempty" yaml:"medications,omitempty"`
}

type fieldRange struct {
	field    string
	min, max float64
}

var (
	ageRange      = fieldRange{"age", 1, 120}
	a1cRange      = fieldRange{"a1c", 3, 20}
	fastingRange  = fieldRange{"fasting_glucose", 30, 600}
	durationRange = fieldRange{"diabetes_duration_years", 0, 100}
)

func (r fieldRange) check(v float64) error {
	if math.IsNaN(v) || v < r.min || v > r.max {
		return apperrors.Newf(apperrors.InvalidInput, "%s must be between %g and %g, got %g", r.field, r.min, r.max, v)
	}
	return nil
}

// Build validates raw and fills neutral defaults: healthy status, moderate
// activity, unknown numeric fields left nil.
func Build(raw Raw) (models.ProfileContext, error) {
	status, err := resolveStatus(raw)
	if err != nil {
		return models.ProfileContext{}, err
	}
	activity, err := ParseActivityLevel(raw.ActivityLevel)
	if err != nil {
		return models.ProfileContext{}, err
	}

	ctx := models.ProfileContext{
		HealthStatus:  status,
		ActivityLevel: activity,
		Medications:   NormalizeMedications(raw.Medications),
	}

	if raw.Age != nil {
		if err := ageRange.check(float64(*raw.Age)); err != nil {
			return models.ProfileContext{}, err
		}
		age := *raw.Age
		ctx.Age = &age
	}
	if raw.A1C != nil {
		if err := a1cRange.check(*raw.A1C); err != nil {
			return models.ProfileContext{}, err
		}
		ctx.A1C = copyFloat(raw.A1C)
	}
	if raw.FastingGlucose != nil {
		if err := fastingRange.check(*raw.FastingGlucose); err != nil {
			return models.ProfileContext{}, err
		}
		ctx.FastingGlucose = copyFloat(raw.FastingGlucose)
	}
	if raw.DiabetesDurationYears != nil && status.IsDiabetic() {
		if err := durationRange.check(*raw.DiabetesDurationYears); err != nil {
			return models.ProfileContext{}, err
		}
		ctx.DiabetesDurationYears = copyFloat(raw.DiabetesDurationYears)
	}
	if raw.HeightCm != nil && raw.WeightKg != nil {
		if bmi, ok := BMI(*raw.HeightCm, *raw.WeightKg); ok {
			ctx.BMI = &bmi
		}
	}
	return ctx, nil
}

func copyFloat(v *float64) *float64 {
	c := *v
	return &c
}

func resolveStatus(raw Raw) (models.HealthStatus, error) {
	if strings.TrimSpace(raw.HealthStatus) != "" {
		return ParseHealthStatus(raw.HealthStatus)
	}
	hasIR := raw.HasInsulinResistance != nil && *raw.HasInsulinResistance
	return HealthStatusFrom(hasIR, raw.DiabetesType), nil
}

// BMI computes weight / height² rounded to one decimal. Implausible inputs
// yield ok=false.
func BMI(heightCm, weightKg float64) (float64, bool) {
	if heightCm < 50 || heightCm > 300 || weightKg < 20 || weightKg > 500 {
		return 0, false
	}
	h := heightCm / 100
	return math.Round(weightKg/(h*h)*10) / 10, true
}
