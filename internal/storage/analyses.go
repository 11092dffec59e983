// internal/storage/analyses.go
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"mcp-glucoguide/internal/models"
)

// SaveAnalysis appends an analysis to the log, assigning an id and
// timestamp when missing.
func (s *SQLiteStorage) SaveAnalysis(ctx context.Context, a *models.Analysis) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}

	var risk sql.NullFloat64
	if a.RiskScore != nil {
		risk = sql.NullFloat64{Float64: *a.RiskScore, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO analyses (id, user_id, food_name, portions, base_gl, effective_gl, spike_level,
                              risk_score, risk_level, payload, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, a.ID, a.UserID, a.FoodName, a.Portions, a.BaseGL, a.EffectiveGL, string(a.SpikeLevel),
		risk, string(a.RiskLevel), a.Payload, a.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// AnalysisFilter narrows GetAnalyses. Dates are YYYY-MM-DD and inclusive.
type AnalysisFilter struct {
	UserID    string
	StartDate string
	EndDate   string
	Limit     int
}

// GetAnalyses returns logged analyses, newest first.
func (s *SQLiteStorage) GetAnalyses(ctx context.Context, f AnalysisFilter) ([]*models.Analysis, error) {
	query := `
        SELECT id, user_id, food_name, portions, base_gl, effective_gl, spike_level,
               risk_score, risk_level, payload, created_at
        FROM analyses
        WHERE 1=1
    `
	args := []interface{}{}

	if f.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, f.UserID)
	}
	if f.StartDate != "" {
		query += " AND DATE(created_at) >= ?"
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		query += " AND DATE(created_at) <= ?"
		args = append(args, f.EndDate)
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}

	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, f.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*models.Analysis
	for rows.Next() {
		a := &models.Analysis{}
		var spike, riskLevel, createdAt string
		var risk sql.NullFloat64

		err := rows.Scan(&a.ID, &a.UserID, &a.FoodName, &a.Portions, &a.BaseGL, &a.EffectiveGL,
			&spike, &risk, &riskLevel, &a.Payload, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}

		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		a.SpikeLevel = models.SpikeLevel(spike)
		a.RiskLevel = models.RiskLevel(riskLevel)
		if risk.Valid {
			v := risk.Float64
			a.RiskScore = &v
		}

		analyses = append(analyses, a)
	}

	return analyses, rows.Err()
}
