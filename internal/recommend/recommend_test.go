package recommend

import (
	"reflect"
	"testing"

	"mcp-glucoguide/internal/models"
)

func TestForEGL(t *testing.T) {
	tests := []struct {
		name string
		in   models.EGLResult
		want []string
	}{
		{
			name: "high spike, lean meal",
			in: models.EGLResult{
				SpikeLevel: models.SpikeHigh,
				Nutrition:  models.NutritionBreakdown{Protein: 2, Fiber: 1, Fat: 1},
				Modifiers:  models.ModifierSet{Fiber: 0.02, Protein: 0.016, Fat: 0.01},
			},
			want: []string{
				"This food has a high insulin spike potential.",
				"Add a protein source (chicken, fish, eggs, tofu) to slow digestion.",
				"Pair with fiber-rich vegetables or salad to reduce the spike.",
				"Adding healthy fats (avocado, olive oil, nuts) can help.",
				"Consider reducing the portion size by 25-50%.",
				"A 15-minute walk after eating can help manage blood sugar.",
				"The fiber in this food helped the most; keep choosing fiber-rich sides.",
			},
		},
		{
			name: "moderate spike, protein dominant",
			in: models.EGLResult{
				SpikeLevel: models.SpikeModerate,
				Nutrition:  models.NutritionBreakdown{Protein: 20, Fiber: 6},
				Modifiers:  models.ModifierSet{Fiber: 0.12, Protein: 0.16},
			},
			want: []string{
				"This food has a moderate insulin spike potential.",
				"Safe to eat in moderation as part of a balanced meal.",
				"Pairing with protein helped; continue this pattern.",
			},
		},
		{
			name: "low spike, no modifiers",
			in: models.EGLResult{
				SpikeLevel: models.SpikeLow,
				Nutrition:  models.NutritionBreakdown{Protein: 0, Fiber: 0},
			},
			want: []string{
				"This food has a low insulin spike potential.",
				"Safe to eat freely as part of a healthy diet.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForEGL(&tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ForEGL() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestDominantModifierTip(t *testing.T) {
	tests := []struct {
		m    models.ModifierSet
		want string
	}{
		{models.ModifierSet{}, ""},
		{models.ModifierSet{Fiber: 0.1, Protein: 0.1, Fat: 0.1}, "The fiber in this food helped the most; keep choosing fiber-rich sides."},
		{models.ModifierSet{Protein: 0.1, Fat: 0.1}, "Pairing with protein helped; continue this pattern."},
		{models.ModifierSet{Fiber: 0.01, Fat: 0.15}, "The fat in this food slowed absorption; favor unsaturated fats for the same effect."},
	}
	for _, tt := range tests {
		if got := dominantModifierTip(tt.m); got != tt.want {
			t.Errorf("dominantModifierTip(%+v) = %q, want %q", tt.m, got, tt.want)
		}
	}
}

func TestForRiskOrdering(t *testing.T) {
	bmi := 29.0
	res := &models.RiskScoreResult{
		RiskScore: 30,
		RiskLevel: models.RiskHigh,
		Warnings:  []string{"warning one", "warning two"},
	}
	egl := &models.EGLResult{Modifiers: models.ModifierSet{Protein: 0.1}}
	p := models.ProfileContext{ActivityLevel: models.Sedentary, BMI: &bmi}

	want := []string{
		"warning one",
		"warning two",
		"High expected glucose impact for your profile (risk score 30.0).",
		"Consider halving the portion or swapping for a lower-GI alternative.",
		"Pairing with protein helped; continue this pattern.",
		"A 10-15 minute walk after eating helps your muscles take up glucose.",
		"Smaller portions of high-GL foods support both weight and glucose goals.",
	}
	if got := ForRisk(res, egl, p); !reflect.DeepEqual(got, want) {
		t.Errorf("ForRisk() =\n%q\nwant\n%q", got, want)
	}
}

func TestForRiskMinimal(t *testing.T) {
	res := &models.RiskScoreResult{RiskScore: 4.2, RiskLevel: models.RiskMinimal, Warnings: []string{}}
	got := ForRisk(res, nil, models.ProfileContext{ActivityLevel: models.Active})

	want := []string{"Minimal expected glucose impact for your profile (risk score 4.2)."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ForRisk() = %q, want %q", got, want)
	}
}
