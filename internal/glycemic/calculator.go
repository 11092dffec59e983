// internal/glycemic/calculator.go
package glycemic

import (
	"strings"
	"unicode"

	apperrors "mcp-glucoguide/internal/errors"
	"mcp-glucoguide/internal/models"
	"mcp-glucoguide/internal/recommend"
)

// Calculator turns resolved nutrition and a portion into an EGLResult.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	defaultGI *float64
}

type Option func(*Calculator)

// WithDefaultGI makes foods without a GI fall back to gi instead of failing
// with UNKNOWN_GI.
func WithDefaultGI(gi float64) Option {
	return func(c *Calculator) {
		v := clampGI(gi)
		c.defaultGI = &v
	}
}

func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MealItem is one food of a combined meal.
type MealItem struct {
	Food    models.Food
	Portion models.Portion
}

// Calculate runs base load, modifiers and classification for a single food.
func (c *Calculator) Calculate(food models.Food, portion models.Portion) (*models.EGLResult, error) {
	if err := ValidatePortion(portion); err != nil {
		return nil, err
	}
	gi, err := c.resolveGI(food)
	if err != nil {
		return nil, err
	}

	base, err := CalculateBaseLoad(food.Facts, portion, gi)
	if err != nil {
		return nil, err
	}
	return c.finish(food.Name, portion.Servings, portion.ServingSizeGrams, base), nil
}

// CalculateMeal sums the nutrients of every item and scores the meal as one
// food. The meal GI is the carbohydrate-weighted mean of the item GIs.
func (c *Calculator) CalculateMeal(items []MealItem) (*models.EGLResult, error) {
	if len(items) == 0 {
		return nil, apperrors.New(apperrors.InvalidInput, "meal has no foods")
	}
	if len(items) == 1 {
		return c.Calculate(items[0].Food, items[0].Portion)
	}

	var (
		totals    models.NutritionFacts
		grams     float64
		giByCarbs float64
		names     = make([]string, 0, len(items))
	)
	for _, item := range items {
		if err := ValidatePortion(item.Portion); err != nil {
			return nil, err
		}
		gi, err := c.resolveGI(item.Food)
		if err != nil {
			return nil, err
		}
		g := item.Portion.TotalGrams()
		scaled := sanitize(item.Food.Facts).Scale(g / 100)

		totals = totals.Add(scaled)
		grams += g
		giByCarbs += clampGI(gi) * scaled.Carbs
		names = append(names, titleCase(item.Food.Name))
	}

	var mealGI float64
	if totals.Carbs > 0 {
		mealGI = giByCarbs / totals.Carbs
	}

	// Totals are already scaled: a single 100 g "serving" keeps them as is.
	base, err := CalculateBaseLoad(totals, models.Portion{Servings: 1, ServingSizeGrams: 100}, mealGI)
	if err != nil {
		return nil, err
	}
	base.TotalGrams = grams

	return c.finish(strings.Join(names, " + "), 1, grams, base), nil
}

func (c *Calculator) finish(name string, portions, servingSize float64, base BaseLoad) *models.EGLResult {
	mods := Modifiers(base.Nutrition)
	total := TotalReduction(mods)

	baseGL := Round1(base.BaseGL)
	effectiveGL := Round1(EffectiveGL(base.BaseGL, total))

	before := Classify(baseGL)
	after := Classify(effectiveGL)

	result := &models.EGLResult{
		FoodName:    name,
		Portions:    portions,
		ServingSize: servingSize,
		Nutrition: models.NutritionBreakdown{
			Carbs:    Round1(base.Nutrition.Carbs),
			Protein:  Round1(base.Nutrition.Protein),
			Fat:      Round1(base.Nutrition.Fat),
			Fiber:    Round1(base.Nutrition.Fiber),
			NetCarbs: Round1(base.NetCarbs),
		},
		GI:                        Round1(base.GI),
		BaseGL:                    baseGL,
		EffectiveGL:               effectiveGL,
		Modifiers:                 mods,
		TotalReductionPercent:     total,
		SpikeLevel:                after,
		SpikeLevelBeforeModifiers: before,
		SpikeImproved:             Improved(before, after),
	}
	result.Recommendations = recommend.ForEGL(result)
	result.Explanation = Explain(result)
	return result
}

func (c *Calculator) resolveGI(food models.Food) (float64, error) {
	if food.GI != nil {
		return *food.GI, nil
	}
	if c.defaultGI != nil {
		return *c.defaultGI, nil
	}
	return 0, apperrors.Newf(apperrors.UnknownGI, "no glycemic index known for %q", food.Name)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
