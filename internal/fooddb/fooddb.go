// internal/fooddb/fooddb.go

// Package fooddb ships the built-in food table and an in-memory resolver
// over it.
package fooddb

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "mcp-glucoguide/internal/errors"
	"mcp-glucoguide/internal/models"
)

//go:embed foods.yaml
var seedYAML []byte

// SeedSource tags foods that came from the embedded table.
const SeedSource = "seed"

type seedFile struct {
	Foods []models.Food `yaml:"foods"`
}

// Load parses the embedded seed table.
func Load() ([]models.Food, error) {
	return Parse(seedYAML)
}

// Parse decodes a YAML food table. Names are lower-cased; later duplicates
// are dropped.
func Parse(data []byte) ([]models.Food, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse food table: %w", err)
	}

	seen := make(map[string]bool, len(f.Foods))
	foods := make([]models.Food, 0, len(f.Foods))
	for _, food := range f.Foods {
		food.Name = Canonical(food.Name)
		if food.Name == "" || seen[food.Name] {
			continue
		}
		if food.ServingSizeGrams <= 0 {
			return nil, fmt.Errorf("food %q has no serving size", food.Name)
		}
		if food.Source == "" {
			food.Source = SeedSource
		}
		seen[food.Name] = true
		foods = append(foods, food)
	}
	return foods, nil
}

// Canonical is the lookup form of a food name.
func Canonical(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Table is an immutable in-memory nutrition resolver.
type Table struct {
	foods  []models.Food
	byName map[string]int
}

func NewTable(foods []models.Food) *Table {
	t := &Table{
		foods:  make([]models.Food, len(foods)),
		byName: make(map[string]int, len(foods)),
	}
	copy(t.foods, foods)
	for i, f := range t.foods {
		t.byName[Canonical(f.Name)] = i
	}
	return t
}

// Default builds a Table from the embedded seed data.
func Default() (*Table, error) {
	foods, err := Load()
	if err != nil {
		return nil, err
	}
	return NewTable(foods), nil
}

// Resolve tries an exact match first, then the first food whose name
// contains the query or is contained in it.
func (t *Table) Resolve(_ context.Context, foodID string) (*models.Food, error) {
	q := Canonical(foodID)
	if q == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "food name is required")
	}
	if i, ok := t.byName[q]; ok {
		f := t.foods[i]
		return &f, nil
	}
	for _, f := range t.foods {
		name := Canonical(f.Name)
		if strings.Contains(name, q) || strings.Contains(q, name) {
			found := f
			return &found, nil
		}
	}
	return nil, apperrors.Newf(apperrors.NotFound, "food %q not found", foodID)
}

// Search returns foods whose name contains query, in table order.
func (t *Table) Search(query string, limit int) []models.Food {
	q := Canonical(query)
	var out []models.Food
	for _, f := range t.foods {
		if !strings.Contains(Canonical(f.Name), q) {
			continue
		}
		out = append(out, f)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Categories lists the distinct categories, sorted.
func (t *Table) Categories() []string {
	set := map[string]bool{}
	for _, f := range t.foods {
		if f.Category != "" {
			set[f.Category] = true
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (t *Table) Len() int {
	return len(t.foods)
}

// Foods returns a copy of every food in the table.
func (t *Table) Foods() []models.Food {
	out := make([]models.Food, len(t.foods))
	copy(out, t.foods)
	return out
}
