package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	apperrors "mcp-glucoguide/internal/errors"
	"mcp-glucoguide/internal/fooddb"
	"mcp-glucoguide/internal/models"
	"mcp-glucoguide/internal/profile"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	// Deterministic, strictly increasing clock.
	clock := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func seeded(t *testing.T) *SQLiteStorage {
	t.Helper()
	s := newTestStorage(t)
	foods, err := fooddb.Load()
	if err != nil {
		t.Fatal(err)
	}
	n, err := s.SeedFoods(context.Background(), foods)
	if err != nil {
		t.Fatalf("SeedFoods() error = %v", err)
	}
	if n != len(foods) {
		t.Fatalf("SeedFoods() = %d, want %d", n, len(foods))
	}
	return s
}

func TestSeedFoodsOnlyOnce(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	foods, _ := fooddb.Load()
	n, err := s.SeedFoods(ctx, foods)
	if err != nil {
		t.Fatalf("second SeedFoods() error = %v", err)
	}
	if n != 0 {
		t.Errorf("second SeedFoods() = %d, want 0", n)
	}

	count, err := s.CountFoods(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != len(foods) {
		t.Errorf("CountFoods() = %d, want %d", count, len(foods))
	}
}

func TestResolve(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	food, err := s.Resolve(ctx, "Brown Rice")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if food.Name != "brown rice" || food.GI == nil || *food.GI != 50 {
		t.Errorf("Resolve(Brown Rice) = %+v", food)
	}
	if food.ServingSizeGrams != 150 || food.Facts.Carbs != 23 || food.Source != fooddb.SeedSource {
		t.Errorf("Resolve(Brown Rice) facts = %+v", food)
	}

	partial, err := s.Resolve(ctx, "rice")
	if err != nil {
		t.Fatalf("Resolve(rice) error = %v", err)
	}
	if partial.Name != "white rice" {
		t.Errorf("Resolve(rice) = %q, want white rice (first seeded)", partial.Name)
	}

	if _, err := s.Resolve(ctx, "moon dust"); apperrors.CodeOf(err) != apperrors.NotFound {
		t.Errorf("Resolve(unknown) error = %v, want NOT_FOUND", err)
	}
	if _, err := s.Resolve(ctx, ""); apperrors.CodeOf(err) != apperrors.InvalidInput {
		t.Errorf("Resolve(empty) error = %v, want INVALID_INPUT", err)
	}
}

func TestResolveMatchesTable(t *testing.T) {
	s := seeded(t)
	table, err := fooddb.Default()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, q := range []string{"apple", "APPLE JUICE", "ripe banana", "dal", "greek yogurt", "sweet"} {
		want, werr := table.Resolve(ctx, q)
		got, gerr := s.Resolve(ctx, q)
		if apperrors.CodeOf(werr) != apperrors.CodeOf(gerr) {
			t.Errorf("%q: errors differ: table %v, sqlite %v", q, werr, gerr)
			continue
		}
		if werr == nil && want.Name != got.Name {
			t.Errorf("%q: table resolved %q, sqlite %q", q, want.Name, got.Name)
		}
	}
}

func TestUpsertGIValuePrecedence(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	inserted, err := s.UpsertGIValue(ctx, fooddb.GIValue{FoodName: "Apple", GI: 40, Source: "lab a", Confidence: models.LowConfidence})
	if err != nil || !inserted {
		t.Fatalf("UpsertGIValue() = %v, %v, want inserted", inserted, err)
	}
	if food, _ := s.Resolve(ctx, "apple"); *food.GI != 36 {
		t.Errorf("GI = %v, want seeded medium-confidence 36 over low-confidence 40", *food.GI)
	}

	if _, err := s.UpsertGIValue(ctx, fooddb.GIValue{FoodName: "apple", GI: 39, Source: "lab b", Confidence: models.HighConfidence}); err != nil {
		t.Fatal(err)
	}
	if food, _ := s.Resolve(ctx, "apple"); *food.GI != 39 {
		t.Errorf("GI = %v, want high-confidence 39", *food.GI)
	}

	if _, err := s.UpsertGIValue(ctx, fooddb.GIValue{FoodName: "apple", GI: 34, Source: "lab c", Confidence: models.HighConfidence}); err != nil {
		t.Fatal(err)
	}
	if food, _ := s.Resolve(ctx, "apple"); *food.GI != 34 {
		t.Errorf("GI = %v, want newest high-confidence 34", *food.GI)
	}

	inserted, err = s.UpsertGIValue(ctx, fooddb.GIValue{FoodName: "apple", GI: 33, Source: "lab b", Confidence: models.HighConfidence})
	if err != nil || inserted {
		t.Fatalf("UpsertGIValue() same source = %v, %v, want update", inserted, err)
	}
	if food, _ := s.Resolve(ctx, "apple"); *food.GI != 33 {
		t.Errorf("GI = %v, want updated 33", *food.GI)
	}
}

func TestUpsertFood(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	food := models.Food{Name: "Teff Porridge", Facts: models.NutritionFacts{Carbs: 20, Fiber: 3}, ServingSizeGrams: 250, Category: "grains"}
	if err := s.UpsertFood(ctx, food); err != nil {
		t.Fatalf("UpsertFood() error = %v", err)
	}
	got, err := s.Resolve(ctx, "teff porridge")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.GI != nil {
		t.Errorf("GI = %v, want nil before any GI value is stored", *got.GI)
	}
	if got.Source != "manual" {
		t.Errorf("Source = %q, want manual", got.Source)
	}

	food.ServingSizeGrams = 300
	if err := s.UpsertFood(ctx, food); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Resolve(ctx, "teff porridge")
	if got.ServingSizeGrams != 300 {
		t.Errorf("ServingSizeGrams = %v, want 300", got.ServingSizeGrams)
	}
	if n, _ := s.CountFoods(ctx); n != 1 {
		t.Errorf("CountFoods() = %d, want 1", n)
	}
}

func TestSearchAndCategories(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	foods, err := s.SearchFoods(ctx, "Rice", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(foods) != 4 {
		t.Errorf("SearchFoods(rice) = %d foods, want 4", len(foods))
	}
	for _, f := range foods {
		if f.GI == nil {
			t.Errorf("%s returned without GI", f.Name)
		}
	}

	limited, _ := s.SearchFoods(ctx, "rice", 1)
	if len(limited) != 1 {
		t.Errorf("SearchFoods(rice, 1) = %d foods", len(limited))
	}

	table, _ := fooddb.Default()
	cats, err := s.Categories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := table.Categories()
	if len(cats) != len(want) {
		t.Fatalf("Categories() = %v, want %v", cats, want)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("Categories()[%d] = %q, want %q", i, cats[i], want[i])
		}
	}
}

func TestProfiles(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.GetProfile(ctx, "u1"); apperrors.CodeOf(err) != apperrors.NotFound {
		t.Errorf("GetProfile(missing) error = %v, want NOT_FOUND", err)
	}
	pc, err := s.LoadProfile(ctx, "u1")
	if err != nil || pc != nil {
		t.Errorf("LoadProfile(missing) = %v, %v, want nil, nil", pc, err)
	}

	a1c := 6.1
	raw := profile.Raw{HealthStatus: "prediabetes", A1C: &a1c, ActivityLevel: "active", Medications: []string{"metformin"}}
	if err := s.SaveProfile(ctx, "u1", raw); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	pc, err = s.LoadProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if pc.HealthStatus != models.Prediabetes || pc.ActivityLevel != models.Active || !pc.Takes(models.Metformin) {
		t.Errorf("LoadProfile() = %+v", pc)
	}

	raw.HealthStatus = "type1"
	if err := s.SaveProfile(ctx, "u1", raw); err != nil {
		t.Fatalf("SaveProfile() overwrite error = %v", err)
	}
	got, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.HealthStatus != "type1" {
		t.Errorf("HealthStatus = %q, want type1 after overwrite", got.HealthStatus)
	}

	tests := []struct {
		raw          profile.Raw
		wantStatus   string
		wantIR       bool
		wantDiabetes string
	}{
		{profile.Raw{HealthStatus: "T2D"}, "type2", true, "type2"},
		{profile.Raw{HealthStatus: "Prediabetic"}, "prediabetes", true, "prediabetes"},
		{profile.Raw{HealthStatus: "type_1"}, "type1", false, "type1"},
		{profile.Raw{DiabetesType: "gestational"}, "insulin_resistance", true, "none"},
		{profile.Raw{}, "healthy", false, "none"},
	}
	for _, tt := range tests {
		if err := s.SaveProfile(ctx, "u3", tt.raw); err != nil {
			t.Fatalf("SaveProfile(%+v) error = %v", tt.raw, err)
		}
		got, err := s.GetProfile(ctx, "u3")
		if err != nil {
			t.Fatal(err)
		}
		if got.HealthStatus != tt.wantStatus || got.HasInsulinResistance == nil ||
			*got.HasInsulinResistance != tt.wantIR || got.DiabetesType != tt.wantDiabetes {
			t.Errorf("stored %+v = (%q, %v, %q), want (%q, %v, %q)", tt.raw,
				got.HealthStatus, got.HasInsulinResistance, got.DiabetesType, tt.wantStatus, tt.wantIR, tt.wantDiabetes)
		}
		pc, err := profile.Build(profile.Raw{HasInsulinResistance: got.HasInsulinResistance, DiabetesType: got.DiabetesType})
		if err != nil || string(pc.HealthStatus) != tt.wantStatus {
			t.Errorf("onboarding pair for %q builds %q, %v", tt.wantStatus, pc.HealthStatus, err)
		}
	}

	if err := s.SaveProfile(ctx, "u2", profile.Raw{ActivityLevel: "napping"}); apperrors.CodeOf(err) != apperrors.InvalidInput {
		t.Errorf("SaveProfile(invalid) error = %v, want INVALID_INPUT", err)
	}
	if err := s.SaveProfile(ctx, "", raw); apperrors.CodeOf(err) != apperrors.InvalidInput {
		t.Errorf("SaveProfile(no user) error = %v, want INVALID_INPUT", err)
	}
}

func TestAnalyses(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	risk := 18.4
	entries := []*models.Analysis{
		{UserID: "a", FoodName: "apple", Portions: 1, BaseGL: 6.2, EffectiveGL: 5.8, SpikeLevel: models.SpikeLow},
		{UserID: "b", FoodName: "cake", Portions: 2, BaseGL: 30, EffectiveGL: 24.1, SpikeLevel: models.SpikeHigh},
		{UserID: "a", FoodName: "pasta", Portions: 1, BaseGL: 14, EffectiveGL: 12.3, SpikeLevel: models.SpikeModerate,
			RiskScore: &risk, RiskLevel: models.RiskModerate, Payload: `{"egl":{}}`},
	}
	for _, a := range entries {
		if err := s.SaveAnalysis(ctx, a); err != nil {
			t.Fatalf("SaveAnalysis() error = %v", err)
		}
		if a.ID == "" || a.CreatedAt.IsZero() {
			t.Errorf("SaveAnalysis() did not assign id/timestamp: %+v", a)
		}
	}

	all, err := s.GetAnalyses(ctx, AnalysisFilter{})
	if err != nil {
		t.Fatalf("GetAnalyses() error = %v", err)
	}
	if len(all) != 3 || all[0].FoodName != "pasta" || all[2].FoodName != "apple" {
		t.Fatalf("GetAnalyses() order = %v, want newest first", names(all))
	}
	if all[0].RiskScore == nil || *all[0].RiskScore != 18.4 || all[0].RiskLevel != models.RiskModerate {
		t.Errorf("risk fields = %v %v", all[0].RiskScore, all[0].RiskLevel)
	}
	if all[1].RiskScore != nil {
		t.Errorf("cake RiskScore = %v, want nil", *all[1].RiskScore)
	}
	if !all[0].CreatedAt.Equal(entries[2].CreatedAt.Truncate(time.Millisecond)) {
		t.Errorf("CreatedAt = %v, want %v", all[0].CreatedAt, entries[2].CreatedAt)
	}

	forA, _ := s.GetAnalyses(ctx, AnalysisFilter{UserID: "a"})
	if len(forA) != 2 {
		t.Errorf("GetAnalyses(user a) = %v", names(forA))
	}

	limited, _ := s.GetAnalyses(ctx, AnalysisFilter{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("GetAnalyses(limit 1) = %d entries", len(limited))
	}

	inRange, _ := s.GetAnalyses(ctx, AnalysisFilter{StartDate: "2024-03-01", EndDate: "2024-03-01"})
	if len(inRange) != 3 {
		t.Errorf("GetAnalyses(2024-03-01) = %d entries, want 3", len(inRange))
	}
	outOfRange, _ := s.GetAnalyses(ctx, AnalysisFilter{StartDate: "2024-03-02"})
	if len(outOfRange) != 0 {
		t.Errorf("GetAnalyses(from 2024-03-02) = %d entries, want 0", len(outOfRange))
	}
}

func names(as []*models.Analysis) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.FoodName)
	}
	return out
}

func TestPing(t *testing.T) {
	s := newTestStorage(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
