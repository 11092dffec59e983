package fooddb

import (
	"context"
	"testing"

	apperrors "mcp-glucoguide/internal/errors"
)

func TestLoadSeedTable(t *testing.T) {
	foods, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(foods) < 50 {
		t.Fatalf("Load() returned %d foods, want the full seed table", len(foods))
	}
	for _, f := range foods {
		if f.GI == nil {
			t.Errorf("%s has no GI", f.Name)
		}
		if f.ServingSizeGrams <= 0 {
			t.Errorf("%s has serving size %v", f.Name, f.ServingSizeGrams)
		}
		if f.Category == "" {
			t.Errorf("%s has no category", f.Name)
		}
		if f.Source != SeedSource {
			t.Errorf("%s source = %q, want %q", f.Name, f.Source, SeedSource)
		}
		if f.Facts.Fiber > f.Facts.Carbs {
			t.Errorf("%s has more fiber than carbohydrate", f.Name)
		}
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
foods:
  - name: "  Green   Apple "
    gi: 38
    per_100g: {carbs: 14, protein: 0.3, fat: 0.2, fiber: 2.4}
    serving_size: 180
  - name: green apple
    gi: 99
    per_100g: {carbs: 1}
    serving_size: 1
  - name: mystery
    per_100g: {carbs: 10}
    serving_size: 50
`)
	foods, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(foods) != 2 {
		t.Fatalf("len = %d, want 2 (duplicate dropped)", len(foods))
	}
	if foods[0].Name != "green apple" || *foods[0].GI != 38 {
		t.Errorf("foods[0] = %+v", foods[0])
	}
	if foods[1].GI != nil {
		t.Errorf("mystery GI = %v, want nil", *foods[1].GI)
	}

	if _, err := Parse([]byte("foods:\n  - name: x\n")); err == nil {
		t.Error("expected error for missing serving size")
	}
	if _, err := Parse([]byte("foods: [")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestTableResolve(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	tests := []struct {
		query string
		want  string
	}{
		{"Banana", "banana"},
		{"  WHITE   rice ", "white rice"},
		{"rice", "white rice"},
		{"ripe banana", "banana"},
		{"chicken", "chicken"},
	}
	for _, tt := range tests {
		food, err := table.Resolve(ctx, tt.query)
		if err != nil {
			t.Errorf("Resolve(%q) error = %v", tt.query, err)
			continue
		}
		if food.Name != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.query, food.Name, tt.want)
		}
	}

	if _, err := table.Resolve(ctx, "moon dust"); apperrors.CodeOf(err) != apperrors.NotFound {
		t.Errorf("Resolve(unknown) error = %v, want NOT_FOUND", err)
	}
	if _, err := table.Resolve(ctx, " "); apperrors.CodeOf(err) != apperrors.InvalidInput {
		t.Errorf("Resolve(empty) error = %v, want INVALID_INPUT", err)
	}
}

func TestTableSearchAndCategories(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	if got := table.Search("juice", 0); len(got) != 2 {
		t.Errorf("Search(juice) = %d foods, want 2", len(got))
	}
	if got := table.Search("rice", 2); len(got) != 2 {
		t.Errorf("Search(rice, 2) = %d foods, want 2", len(got))
	}

	cats := table.Categories()
	for i := 1; i < len(cats); i++ {
		if cats[i-1] >= cats[i] {
			t.Fatalf("Categories() not sorted and distinct: %v", cats)
		}
	}
	if table.Len() != len(table.Foods()) {
		t.Errorf("Len() = %d, Foods() = %d", table.Len(), len(table.Foods()))
	}
}

func TestClassifyGI(t *testing.T) {
	tests := []struct {
		gi   float64
		want string
	}{
		{0, GICategoryLow},
		{55, GICategoryLow},
		{56, GICategoryMedium},
		{69, GICategoryMedium},
		{70, GICategoryHigh},
		{110, GICategoryHigh},
	}
	for _, tt := range tests {
		if got := ClassifyGI(tt.gi); got != tt.want {
			t.Errorf("ClassifyGI(%v) = %q, want %q", tt.gi, got, tt.want)
		}
	}
}
