// internal/importer/gi_csv.go

// Package importer loads sourced glycemic index values from CSV files.
//
// Expected header: food_name,gi,source,source_url,confidence,notes
// Only food_name and gi are required per row.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"mcp-glucoguide/internal/fooddb"
	"mcp-glucoguide/internal/models"
)

// Store receives the parsed values.
type Store interface {
	UpsertGIValue(ctx context.Context, v fooddb.GIValue) (bool, error)
}

type Options struct {
	// Source overrides the per-row source column when set.
	Source            string
	DefaultConfidence models.ConfidenceLevel
}

type Report struct {
	Imported int      `json:"imported"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Problems []string `json:"problems,omitempty"`
}

type Importer struct {
	store  Store
	opts   Options
	logger *slog.Logger
}

func New(store Store, opts Options, logger *slog.Logger) *Importer {
	if opts.DefaultConfidence == "" {
		opts.DefaultConfidence = models.MediumConfidence
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, opts: opts, logger: logger}
}

// ImportFile opens path and imports it.
func (im *Importer) ImportFile(ctx context.Context, path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return im.Import(ctx, f)
}

// Import reads CSV rows from r. Bad rows are skipped and reported; only
// read or store failures abort the import.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Report, error) {
	var report Report

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return report, fmt.Errorf("failed to read header: %w", err)
	}
	cols := indexColumns(header)
	if _, ok := cols["food_name"]; !ok {
		return report, fmt.Errorf("missing food_name column")
	}
	if _, ok := cols["gi"]; !ok {
		return report, fmt.Errorf("missing gi column")
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return report, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		v, problem := im.parseRow(cols, record)
		if problem != "" {
			report.Skipped++
			report.Problems = append(report.Problems, fmt.Sprintf("line %d: %s", line, problem))
			continue
		}

		inserted, err := im.store.UpsertGIValue(ctx, v)
		if err != nil {
			return report, fmt.Errorf("line %d: %w", line, err)
		}
		if inserted {
			report.Imported++
		} else {
			report.Updated++
		}
	}

	im.logger.Info("GI import finished",
		"imported", report.Imported, "updated", report.Updated, "skipped", report.Skipped)
	return report, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return cols
}

func (im *Importer) parseRow(cols map[string]int, record []string) (fooddb.GIValue, string) {
	get := func(col string) string {
		i, ok := cols[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := fooddb.Canonical(get("food_name"))
	if name == "" {
		return fooddb.GIValue{}, "missing food_name"
	}
	gi, err := strconv.ParseFloat(get("gi"), 64)
	if err != nil {
		return fooddb.GIValue{}, fmt.Sprintf("invalid gi %q for %s", get("gi"), name)
	}
	if gi < 0 || gi > 110 {
		return fooddb.GIValue{}, fmt.Sprintf("gi %g out of range for %s", gi, name)
	}

	source := im.opts.Source
	if source == "" {
		source = get("source")
	}
	if source == "" {
		source = "imported"
	}

	confidence := im.opts.DefaultConfidence
	if c := strings.ToLower(get("confidence")); c != "" {
		confidence = models.ParseConfidence(c)
	}

	return fooddb.GIValue{
		FoodName:   name,
		GI:         gi,
		Category:   fooddb.ClassifyGI(gi),
		Source:     source,
		SourceURL:  get("source_url"),
		Confidence: confidence,
		Notes:      get("notes"),
	}, ""
}
