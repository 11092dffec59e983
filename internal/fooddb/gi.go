// internal/fooddb/gi.go
package fooddb

import "mcp-glucoguide/internal/models"

// GI categories on the standard glucose scale.
const (
	GICategoryLow    = "low"
	GICategoryMedium = "medium"
	GICategoryHigh   = "high"
)

// ClassifyGI buckets a glycemic index: <=55 low, <=69 medium, else high.
func ClassifyGI(gi float64) string {
	switch {
	case gi <= 55:
		return GICategoryLow
	case gi <= 69:
		return GICategoryMedium
	default:
		return GICategoryHigh
	}
}

// GIValue is one sourced glycemic index measurement for a food.
type GIValue struct {
	FoodName   string                 `json:"food_name"`
	GI         float64                `json:"gi"`
	Category   string                 `json:"gi_category"`
	Source     string                 `json:"source"`
	SourceURL  string                 `json:"source_url,omitempty"`
	Confidence models.ConfidenceLevel `json:"confidence"`
	Notes      string                 `json:"notes,omitempty"`
}
