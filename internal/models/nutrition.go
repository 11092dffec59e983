// internal/models/nutrition.go
package models

// NutritionFacts holds macronutrient grams. Values coming out of the resolver
// are per 100 g; the calculator scales them to the eaten portion.
type NutritionFacts struct {
	Carbs   float64 `json:"carbs" yaml:"carbs"`
	Protein float64 `json:"protein" yaml:"protein"`
	Fat     float64 `json:"fat" yaml:"fat"`
	Fiber   float64 `json:"fiber" yaml:"fiber"`
}

// NetCarbs is carbohydrate minus fiber, never negative.
func (n NutritionFacts) NetCarbs() float64 {
	if n.Fiber >= n.Carbs {
		return 0
	}
	return n.Carbs - n.Fiber
}

// Scale multiplies every macro by factor.
func (n NutritionFacts) Scale(factor float64) NutritionFacts {
	return NutritionFacts{
		Carbs:   n.Carbs * factor,
		Protein: n.Protein * factor,
		Fat:     n.Fat * factor,
		Fiber:   n.Fiber * factor,
	}
}

// Add returns the element-wise sum of two fact sets.
func (n NutritionFacts) Add(o NutritionFacts) NutritionFacts {
	return NutritionFacts{
		Carbs:   n.Carbs + o.Carbs,
		Protein: n.Protein + o.Protein,
		Fat:     n.Fat + o.Fat,
		Fiber:   n.Fiber + o.Fiber,
	}
}

type Portion struct {
	Servings         float64 `json:"servings"`
	ServingSizeGrams float64 `json:"serving_size_grams"`
}

// TotalGrams is servings times serving size.
func (p Portion) TotalGrams() float64 {
	return p.Servings * p.ServingSizeGrams
}

// Food is what the nutrition resolver hands back for a food identifier.
// GI is nil when no glycemic index is known for the food.
type Food struct {
	Name             string         `json:"name" yaml:"name"`
	Facts            NutritionFacts `json:"per_100g" yaml:"per_100g"`
	GI               *float64       `json:"gi,omitempty" yaml:"gi,omitempty"`
	ServingSizeGrams float64        `json:"serving_size_grams" yaml:"serving_size"`
	Category         string         `json:"category,omitempty" yaml:"category,omitempty"`
	Source           string         `json:"source,omitempty" yaml:"source,omitempty"`
}

type ConfidenceLevel string

const (
	HighConfidence   ConfidenceLevel = "high"
	MediumConfidence ConfidenceLevel = "medium"
	LowConfidence    ConfidenceLevel = "low"
)

// ParseConfidence maps free text onto a confidence level, defaulting to medium.
func ParseConfidence(s string) ConfidenceLevel {
	switch ConfidenceLevel(s) {
	case HighConfidence, MediumConfidence, LowConfidence:
		return ConfidenceLevel(s)
	}
	return MediumConfidence
}

// Rank orders confidence levels, high first.
func (c ConfidenceLevel) Rank() int {
	switch c {
	case HighConfidence:
		return 3
	case MediumConfidence:
		return 2
	case LowConfidence:
		return 1
	}
	return 0
}

// IdentifiedFood is one item reported by the food identification collaborator.
type IdentifiedFood struct {
	Name           string          `json:"name"`
	EstimatedGrams float64         `json:"estimated_grams"`
	Portions       float64         `json:"portions"`
	Confidence     ConfidenceLevel `json:"confidence"`
}

type IdentificationRequest struct {
	Description string `json:"description"`
}

type IdentificationResponse struct {
	Foods           []IdentifiedFood `json:"foods"`
	MealDescription string           `json:"meal_description"`
	Confidence      ConfidenceLevel  `json:"confidence"`
	Clarifications  []string         `json:"clarifications,omitempty"`
	NeedsMoreInfo   bool             `json:"needs_more_info"`
}
