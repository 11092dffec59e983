// internal/storage/profiles.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "mcp-glucoguide/internal/errors"
	"mcp-glucoguide/internal/models"
	"mcp-glucoguide/internal/profile"
)

// SaveProfile stores the raw profile for a user, replacing any previous one.
// The profile is validated first so that stored data always builds, and the
// health status is written out together with the onboarding pair
// (has_insulin_resistance, diabetes_type) it maps to.
func (s *SQLiteStorage) SaveProfile(ctx context.Context, userID string, raw profile.Raw) error {
	if userID == "" {
		return apperrors.New(apperrors.InvalidInput, "user id is required")
	}
	pc, err := profile.Build(raw)
	if err != nil {
		return err
	}
	hasIR, diabetesType := profile.StoredFields(pc.HealthStatus)
	raw.HealthStatus = string(pc.HealthStatus)
	raw.HasInsulinResistance = &hasIR
	raw.DiabetesType = diabetesType

	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	now := s.timestamp()
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO profiles (user_id, data, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
    `, userID, string(data), now, now)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile returns the stored raw profile or a NOT_FOUND error.
func (s *SQLiteStorage) GetProfile(ctx context.Context, userID string) (*profile.Raw, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM profiles WHERE user_id = ?`, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.NotFound, "no profile for user %q", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	var raw profile.Raw
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &raw, nil
}

// LoadProfile implements profile.Loader. Users without a profile yield nil.
func (s *SQLiteStorage) LoadProfile(ctx context.Context, userID string) (*models.ProfileContext, error) {
	raw, err := s.GetProfile(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	pc, err := profile.Build(*raw)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile for %s: %w", userID, err)
	}
	return &pc, nil
}
