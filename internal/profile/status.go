// internal/profile/status.go
package profile

import (
	"strings"

	apperrors "mcp-glucoguide/internal/errors"
	"mcp-glucoguide/internal/models"
)

// ParseHealthStatus accepts the onboarding categories, case-insensitively.
func ParseHealthStatus(s string) (models.HealthStatus, error) {
	switch normalize(s) {
	case "", "healthy", "none":
		return models.Healthy, nil
	case "insulin_resistance", "ir":
		return models.InsulinResistance, nil
	case "prediabetes", "prediabetic":
		return models.Prediabetes, nil
	case "type1", "type_1", "t1d":
		return models.Type1, nil
	case "type2", "type_2", "t2d":
		return models.Type2, nil
	}
	return "", apperrors.Newf(apperrors.InvalidInput, "unknown health status %q", s)
}

// HealthStatusFrom derives the category from the stored flag and diabetes
// type. Gestational diabetes is scored like insulin resistance.
func HealthStatusFrom(hasInsulinResistance bool, diabetesType string) models.HealthStatus {
	switch normalize(diabetesType) {
	case "type1", "type_1":
		return models.Type1
	case "type2", "type_2":
		return models.Type2
	case "prediabetes", "prediabetic":
		return models.Prediabetes
	case "gestational":
		return models.InsulinResistance
	}
	if hasInsulinResistance {
		return models.InsulinResistance
	}
	return models.Healthy
}

// StoredFields is the inverse of HealthStatusFrom. The profile store
// persists its result alongside the status.
func StoredFields(status models.HealthStatus) (hasInsulinResistance bool, diabetesType string) {
	switch status {
	case models.InsulinResistance:
		return true, "none"
	case models.Prediabetes:
		return true, "prediabetes"
	case models.Type1:
		return false, "type1"
	case models.Type2:
		return true, "type2"
	}
	return false, "none"
}

// ParseActivityLevel defaults empty input to moderate.
func ParseActivityLevel(s string) (models.ActivityLevel, error) {
	switch normalize(s) {
	case "":
		return models.ModerateActivity, nil
	case "sedentary":
		return models.Sedentary, nil
	case "light", "lightly_active":
		return models.LightActivity, nil
	case "moderate", "moderately_active":
		return models.ModerateActivity, nil
	case "active":
		return models.Active, nil
	case "very_active":
		return models.VeryActive, nil
	}
	return "", apperrors.Newf(apperrors.InvalidInput, "unknown activity level %q", s)
}

var drugClasses = map[string]models.Medication{
	"metformin":     models.Metformin,
	"glucophage":    models.Metformin,
	"glp1":          models.GLP1,
	"glp_1":         models.GLP1,
	"semaglutide":   models.GLP1,
	"liraglutide":   models.GLP1,
	"dulaglutide":   models.GLP1,
	"exenatide":     models.GLP1,
	"tirzepatide":   models.GLP1,
	"ozempic":       models.GLP1,
	"wegovy":        models.GLP1,
	"mounjaro":      models.GLP1,
	"trulicity":     models.GLP1,
	"victoza":       models.GLP1,
	"insulin":       models.Insulin,
	"sglt2":         models.SGLT2,
	"empagliflozin": models.SGLT2,
	"dapagliflozin": models.SGLT2,
	"sulfonylurea":  models.Sulfonylurea,
	"glipizide":     models.Sulfonylurea,
	"glimepiride":   models.Sulfonylurea,
}

// NormalizeMedications maps free-text names to drug classes, dropping
// duplicates. Unrecognized names become OtherDrug.
func NormalizeMedications(names []string) []models.Medication {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[models.Medication]bool, len(names))
	out := make([]models.Medication, 0, len(names))
	for _, name := range names {
		key := normalize(name)
		if key == "" {
			continue
		}
		class, ok := drugClasses[key]
		if !ok {
			class = models.OtherDrug
		}
		if seen[class] {
			continue
		}
		seen[class] = true
		out = append(out, class)
	}
	return out
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	return s
}
