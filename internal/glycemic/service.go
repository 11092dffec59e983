// internal/glycemic/service.go
package glycemic

import (
	"context"
	"math"
	"strings"

	apperrors "mcp-glucoguide/internal/errors"
	"mcp-glucoguide/internal/models"
)

// Resolver is the nutrition lookup contract. Implementations return a
// NOT_FOUND AnalysisError when the identifier matches nothing.
type Resolver interface {
	Resolve(ctx context.Context, foodID string) (*models.Food, error)
}

// Service resolves foods and hands them to the pure Calculator.
type Service struct {
	resolver Resolver
	calc     *Calculator
}

func NewService(resolver Resolver, calc *Calculator) *Service {
	if calc == nil {
		calc = NewCalculator()
	}
	return &Service{resolver: resolver, calc: calc}
}

// FoodRequest names a food and how much of it was eaten. A zero
// ServingGrams means the resolver's canonical serving size is used; any
// other value overrides it and must be a positive finite number.
type FoodRequest struct {
	FoodID       string  `json:"food_name"`
	Portions     float64 `json:"portions"`
	ServingGrams float64 `json:"serving_grams,omitempty"`
}

// ComputeEGL looks up foodID and scores the given number of canonical servings.
func (s *Service) ComputeEGL(ctx context.Context, foodID string, portions float64) (*models.EGLResult, error) {
	return s.Compute(ctx, FoodRequest{FoodID: foodID, Portions: portions})
}

// Compute scores a single food request.
func (s *Service) Compute(ctx context.Context, req FoodRequest) (*models.EGLResult, error) {
	item, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.calc.Calculate(item.Food, item.Portion)
}

// ComputeMeal scores several foods eaten together.
func (s *Service) ComputeMeal(ctx context.Context, reqs []FoodRequest) (*models.EGLResult, error) {
	if len(reqs) == 0 {
		return nil, apperrors.New(apperrors.InvalidInput, "meal has no foods")
	}
	items := make([]MealItem, 0, len(reqs))
	for _, req := range reqs {
		item, err := s.resolve(ctx, req)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return s.calc.CalculateMeal(items)
}

func (s *Service) resolve(ctx context.Context, req FoodRequest) (MealItem, error) {
	id := strings.TrimSpace(req.FoodID)
	if id == "" {
		return MealItem{}, apperrors.New(apperrors.InvalidInput, "food name is required")
	}
	if !(req.Portions > 0) {
		return MealItem{}, apperrors.Newf(apperrors.InvalidPortion, "portions must be positive, got %v", req.Portions)
	}
	if req.ServingGrams != 0 && (!(req.ServingGrams > 0) || math.IsInf(req.ServingGrams, 0)) {
		return MealItem{}, apperrors.Newf(apperrors.InvalidPortion, "serving size must be positive, got %v g", req.ServingGrams)
	}

	food, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return MealItem{}, err
	}

	serving := food.ServingSizeGrams
	if req.ServingGrams != 0 {
		serving = req.ServingGrams
	}
	return MealItem{
		Food:    *food,
		Portion: models.Portion{Servings: req.Portions, ServingSizeGrams: serving},
	}, nil
}
