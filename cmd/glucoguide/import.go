// cmd/glucoguide/import.go
package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mcp-glucoguide/internal/importer"
	"mcp-glucoguide/internal/models"
)

var (
	importSource     string
	importConfidence string
	importJSON       bool
)

var importGICmd = &cobra.Command{
	Use:   "import-gi <file.csv>",
	Short: "Import sourced glycemic index values from CSV",
	Long: `Import glycemic index values into the database.

The CSV header must name at least food_name and gi; source, source_url,
confidence and notes are optional. Rows with a missing name or an
unparsable GI are skipped and reported. Existing (food, source) pairs are
updated in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportGI,
}

func init() {
	importGICmd.Flags().StringVar(&importSource, "source", "", "Source name applied to every row")
	importGICmd.Flags().StringVar(&importConfidence, "confidence", "medium", "Confidence for rows without one (high, medium, low)")
	importGICmd.Flags().BoolVar(&importJSON, "json", false, "Output the report as JSON")
	rootCmd.AddCommand(importGICmd)
}

func runImportGI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx := context.Background()

	stor, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stor.Close()

	im := importer.New(stor, importer.Options{
		Source:            importSource,
		DefaultConfidence: models.ParseConfidence(importConfidence),
	}, logger)

	report, err := im.ImportFile(ctx, args[0])
	if err != nil {
		return err
	}

	if importJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(report)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported: %d\nUpdated:  %d\nSkipped:  %d\n", report.Imported, report.Updated, report.Skipped)
	for _, p := range report.Problems {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
	}
	return nil
}
