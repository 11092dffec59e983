// cmd/glucoguide/analyze.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mcp-glucoguide/internal/glycemic"
	"mcp-glucoguide/internal/models"
	"mcp-glucoguide/internal/profile"
	"mcp-glucoguide/internal/risk"
)

var (
	analyzePortions    float64
	analyzeGrams       float64
	analyzeProfilePath string
	analyzeJSON        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <food>",
	Short: "Compute the effective glycemic load of a food portion",
	Long: `Compute the effective glycemic load (eGL) of a food portion and, when a
profile file is given, the personalized risk score.

Examples:
  glucoguide analyze "white rice"
  glucoguide analyze apple --portions 2
  glucoguide analyze pasta --grams 250 --profile profile.yaml --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Float64Var(&analyzePortions, "portions", 1, "Number of servings eaten")
	analyzeCmd.Flags().Float64Var(&analyzeGrams, "grams", 0, "Serving size in grams (defaults to the food's serving size)")
	analyzeCmd.Flags().StringVar(&analyzeProfilePath, "profile", "", "YAML health profile for the risk score")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output JSON")
	rootCmd.AddCommand(analyzeCmd)
}

// analyzeOutput is the JSON shape printed by --json.
type analyzeOutput struct {
	EGL  *models.EGLResult       `json:"egl"`
	Risk *models.RiskScoreResult `json:"risk,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx := context.Background()

	var pc *models.ProfileContext
	if analyzeProfilePath != "" {
		if pc, err = readProfileFile(analyzeProfilePath); err != nil {
			return err
		}
	}

	catalog, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer catalog.Close()

	engine := glycemic.NewService(catalog, newCalculator(cfg))
	egl, err := engine.Compute(ctx, glycemic.FoodRequest{
		FoodID:       strings.Join(args, " "),
		Portions:     analyzePortions,
		ServingGrams: analyzeGrams,
	})
	if err != nil {
		return err
	}

	out := analyzeOutput{EGL: egl}
	if pc != nil {
		out.Risk = risk.Compute(egl, *pc)
	}

	if analyzeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	renderAnalysis(cmd.OutOrStdout(), out)
	return nil
}

// readProfileFile parses a YAML profile with the same fields the
// save_profile tool accepts.
func readProfileFile(path string) (*models.ProfileContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var raw profile.Raw
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}

	pc, err := profile.Build(raw)
	if err != nil {
		return nil, err
	}
	return &pc, nil
}

func renderAnalysis(w io.Writer, out analyzeOutput) {
	fmt.Fprintln(w, out.EGL.Explanation)

	if len(out.EGL.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for _, r := range out.EGL.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}

	if out.Risk == nil {
		return
	}

	scale := "general"
	if out.Risk.DiabeticScale {
		scale = "diabetic"
	}
	fmt.Fprintf(w, "\nRisk score for %s profile: %.1f (%s, %s scale)\n",
		out.Risk.HealthStatus, out.Risk.RiskScore, strings.ToUpper(string(out.Risk.RiskLevel)), scale)
	for _, m := range out.Risk.AppliedModifiers {
		fmt.Fprintf(w, "  %+4.0f%%  %s\n", m.Percent*100, m.Reason)
	}
	if out.Risk.ModifierClamped {
		fmt.Fprintf(w, "  total capped at %+.0f%%\n", out.Risk.TotalModifierPercent*100)
	}

	for _, warn := range out.Risk.Warnings {
		fmt.Fprintf(w, "! %s\n", warn)
	}
	if len(out.Risk.Recommendations) > 0 {
		fmt.Fprintln(w, "\nPersonalized recommendations:")
		for _, r := range out.Risk.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
}
