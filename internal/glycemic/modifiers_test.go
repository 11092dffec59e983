package glycemic

import (
	"testing"

	"mcp-glucoguide/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		gl   float64
		want models.SpikeLevel
	}{
		{0, models.SpikeLow},
		{10, models.SpikeLow},
		{10.1, models.SpikeModerate},
		{11, models.SpikeModerate},
		{19, models.SpikeModerate},
		{19.1, models.SpikeHigh},
		{20, models.SpikeHigh},
		{120, models.SpikeHigh},
	}

	for _, tt := range tests {
		if got := Classify(tt.gl); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.gl, got, tt.want)
		}
	}
}

func TestModifierRates(t *testing.T) {
	tests := []struct {
		name  string
		fn    func(float64) float64
		grams float64
		want  float64
	}{
		{"fiber zero", FiberModifier, 0, 0},
		{"fiber negative", FiberModifier, -3, 0},
		{"fiber linear", FiberModifier, 4, 0.08},
		{"fiber at cap", FiberModifier, 10, 0.20},
		{"fiber above cap", FiberModifier, 40, 0.20},
		{"protein linear", ProteinModifier, 10, 0.08},
		{"protein at cap", ProteinModifier, 25, 0.20},
		{"protein above cap", ProteinModifier, 60, 0.20},
		{"fat linear", FatModifier, 5, 0.05},
		{"fat at cap", FatModifier, 15, 0.15},
		{"fat above cap", FatModifier, 90, 0.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.grams); got != tt.want {
				t.Errorf("modifier(%v) = %v, want %v", tt.grams, got, tt.want)
			}
		})
	}
}

func TestModifiersMonotonic(t *testing.T) {
	prev := models.ModifierSet{}
	for g := 0.0; g <= 60; g += 0.5 {
		m := Modifiers(models.NutritionFacts{Fiber: g, Protein: g, Fat: g})
		if m.Fiber < prev.Fiber || m.Protein < prev.Protein || m.Fat < prev.Fat {
			t.Fatalf("modifiers decreased at %vg: %+v after %+v", g, m, prev)
		}
		prev = m
	}
}

func TestTotalReduction(t *testing.T) {
	tests := []struct {
		m    models.ModifierSet
		want float64
	}{
		{models.ModifierSet{}, 0},
		{models.ModifierSet{Fiber: 0.1, Protein: 0.08, Fat: 0.02}, 0.2},
		{models.ModifierSet{Fiber: 0.2, Protein: 0.2, Fat: 0.05}, 0.45},
		{models.ModifierSet{Fiber: 0.2, Protein: 0.2, Fat: 0.15}, MaxTotalReduction},
	}

	for _, tt := range tests {
		if got := TotalReduction(tt.m); got != tt.want {
			t.Errorf("TotalReduction(%+v) = %v, want %v", tt.m, got, tt.want)
		}
	}
}

func TestEffectiveGL(t *testing.T) {
	if got := EffectiveGL(20, 0.25); got != 15 {
		t.Errorf("EffectiveGL(20, 0.25) = %v, want 15", got)
	}
	if got := EffectiveGL(20, 0); got != 20 {
		t.Errorf("EffectiveGL(20, 0) = %v, want 20", got)
	}
	if got := EffectiveGL(0, 0.45); got != 0 {
		t.Errorf("EffectiveGL(0, 0.45) = %v, want 0", got)
	}
}

func TestRound1(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{10.04, 10.0},
		{10.05, 10.1},
		{10.15, 10.2},
		{-0.25, -0.3},
		{40.32, 40.3},
	}
	for _, tt := range tests {
		if got := Round1(tt.in); got != tt.want {
			t.Errorf("Round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCalculateBaseLoad(t *testing.T) {
	base, err := CalculateBaseLoad(models.NutritionFacts{Carbs: 20, Fiber: 2}, models.Portion{Servings: 2, ServingSizeGrams: 50}, 60)
	if err != nil {
		t.Fatalf("CalculateBaseLoad() error = %v", err)
	}
	if base.TotalGrams != 100 || base.NetCarbs != 18 || base.BaseGL != 10.8 {
		t.Errorf("base = %+v, want 100 g, 18 g net, GL 10.8", base)
	}
}
