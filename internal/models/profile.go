// internal/models/profile.go
package models

type HealthStatus string

const (
	Healthy           HealthStatus = "healthy"
	InsulinResistance HealthStatus = "insulin_resistance"
	Prediabetes       HealthStatus = "prediabetes"
	Type1             HealthStatus = "type1"
	Type2             HealthStatus = "type2"
)

// IsDiabetic reports whether the status is a diagnosed diabetes type.
func (h HealthStatus) IsDiabetic() bool {
	return h == Type1 || h == Type2
}

// UsesDiabeticScale is true for insulin resistance, prediabetes and both
// diabetes types. An unset status scores like healthy.
func (h HealthStatus) UsesDiabeticScale() bool {
	switch h {
	case InsulinResistance, Prediabetes, Type1, Type2:
		return true
	}
	return false
}

// ActivityLevel is a five point ordinal, sedentary lowest.
type ActivityLevel string

const (
	Sedentary        ActivityLevel = "sedentary"
	LightActivity    ActivityLevel = "light"
	ModerateActivity ActivityLevel = "moderate"
	Active           ActivityLevel = "active"
	VeryActive       ActivityLevel = "very_active"
)

type Medication string

const (
	Metformin    Medication = "metformin"
	GLP1         Medication = "glp1"
	Insulin      Medication = "insulin"
	SGLT2        Medication = "sglt2"
	Sulfonylurea Medication = "sulfonylurea"
	OtherDrug    Medication = "other"
)

// ProfileContext is the normalized, read-only view of a user's health
// attributes for one calculation. Nil pointers mean "unknown".
type ProfileContext struct {
	HealthStatus          HealthStatus  `json:"health_status"`
	BMI                   *float64      `json:"bmi,omitempty"`
	ActivityLevel         ActivityLevel `json:"activity_level"`
	A1C                   *float64      `json:"a1c,omitempty"`
	FastingGlucose        *float64      `json:"fasting_glucose,omitempty"`
	DiabetesDurationYears *float64      `json:"diabetes_duration_years,omitempty"`
	Medications           []Medication  `json:"medications,omitempty"`
	Age                   *int          `json:"age,omitempty"`
}

// Takes reports whether the medication class is present.
func (p ProfileContext) Takes(m Medication) bool {
	for _, have := range p.Medications {
		if have == m {
			return true
		}
	}
	return false
}
