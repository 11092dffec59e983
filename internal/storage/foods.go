// internal/storage/foods.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "mcp-glucoguide/internal/errors"
	"mcp-glucoguide/internal/fooddb"
	"mcp-glucoguide/internal/models"
)

// Seeded GI values carry this source name.
const seedGISource = "Initial Database"

// SeedFoods loads foods into an empty database. It returns the number of
// foods written, zero when the table already has rows.
func (s *SQLiteStorage) SeedFoods(ctx context.Context, foods []models.Food) (int, error) {
	n, err := s.CountFoods(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.timestamp()
	for _, food := range foods {
		if err := upsertFood(ctx, tx, food, now); err != nil {
			return 0, err
		}
		if food.GI == nil {
			continue
		}
		_, err := tx.ExecContext(ctx, `
            INSERT INTO gi_values (food_name, gi, gi_category, source, source_url, confidence, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        `, fooddb.Canonical(food.Name), *food.GI, fooddb.ClassifyGI(*food.GI), seedGISource,
			"https://glycemicindex.com/", string(models.MediumConfidence), now, now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert GI value for %s: %w", food.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	return len(foods), nil
}

// UpsertFood inserts or replaces the macros of a food. GI values are
// managed separately through UpsertGIValue.
func (s *SQLiteStorage) UpsertFood(ctx context.Context, food models.Food) error {
	return upsertFood(ctx, s.db, food, s.timestamp())
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func upsertFood(ctx context.Context, db execer, food models.Food, now string) error {
	source := food.Source
	if source == "" {
		source = "manual"
	}
	_, err := db.ExecContext(ctx, `
        INSERT INTO foods (canonical_name, carbs_per_100g, protein_per_100g, fat_per_100g, fiber_per_100g,
                           serving_size_g, category, data_source, last_updated)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(canonical_name) DO UPDATE SET
            carbs_per_100g = excluded.carbs_per_100g,
            protein_per_100g = excluded.protein_per_100g,
            fat_per_100g = excluded.fat_per_100g,
            fiber_per_100g = excluded.fiber_per_100g,
            serving_size_g = excluded.serving_size_g,
            category = excluded.category,
            data_source = excluded.data_source,
            last_updated = excluded.last_updated
    `, fooddb.Canonical(food.Name), food.Facts.Carbs, food.Facts.Protein, food.Facts.Fat, food.Facts.Fiber,
		food.ServingSizeGrams, food.Category, source, now)
	if err != nil {
		return fmt.Errorf("failed to upsert food %s: %w", food.Name, err)
	}
	return nil
}

// UpsertGIValue stores a GI measurement, replacing an existing one from the
// same source. It reports whether a new row was inserted.
func (s *SQLiteStorage) UpsertGIValue(ctx context.Context, v fooddb.GIValue) (bool, error) {
	name := fooddb.Canonical(v.FoodName)
	category := v.Category
	if category == "" {
		category = fooddb.ClassifyGI(v.GI)
	}
	now := s.timestamp()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM gi_values WHERE food_name = ? AND source = ?`, name, v.Source).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
            INSERT INTO gi_values (food_name, gi, gi_category, source, source_url, confidence, notes, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        `, name, v.GI, category, v.Source, v.SourceURL, string(v.Confidence), v.Notes, now, now)
		if err != nil {
			return false, fmt.Errorf("failed to insert GI value: %w", err)
		}
		return true, tx.Commit()
	case err != nil:
		return false, fmt.Errorf("failed to query GI value: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE gi_values SET gi = ?, gi_category = ?, source_url = ?, confidence = ?, notes = ?, updated_at = ?
        WHERE id = ?
    `, v.GI, category, v.SourceURL, string(v.Confidence), v.Notes, now, id)
	if err != nil {
		return false, fmt.Errorf("failed to update GI value: %w", err)
	}
	return false, tx.Commit()
}

const foodColumns = `canonical_name, carbs_per_100g, protein_per_100g, fat_per_100g, fiber_per_100g,
        serving_size_g, category, data_source`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFood(row rowScanner) (*models.Food, error) {
	food := &models.Food{}
	err := row.Scan(&food.Name, &food.Facts.Carbs, &food.Facts.Protein, &food.Facts.Fat,
		&food.Facts.Fiber, &food.ServingSizeGrams, &food.Category, &food.Source)
	if err != nil {
		return nil, err
	}
	return food, nil
}

// Resolve implements the nutrition lookup: exact name first, then the
// oldest food whose name contains the query or is contained in it.
func (s *SQLiteStorage) Resolve(ctx context.Context, foodID string) (*models.Food, error) {
	q := fooddb.Canonical(foodID)
	if q == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "food name is required")
	}

	food, err := scanFood(s.db.QueryRowContext(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE canonical_name = ?`, q))
	if errors.Is(err, sql.ErrNoRows) {
		food, err = scanFood(s.db.QueryRowContext(ctx, `
            SELECT `+foodColumns+` FROM foods
            WHERE instr(canonical_name, ?) > 0 OR instr(?, canonical_name) > 0
            ORDER BY id LIMIT 1
        `, q, q))
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.NotFound, "food %q not found", foodID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve food: %w", err)
	}

	gi, err := s.bestGI(ctx, food.Name)
	if err != nil {
		return nil, err
	}
	food.GI = gi
	return food, nil
}

// bestGI prefers the most confident measurement, then the newest.
func (s *SQLiteStorage) bestGI(ctx context.Context, name string) (*float64, error) {
	var gi float64
	err := s.db.QueryRowContext(ctx, `
        SELECT gi FROM gi_values WHERE food_name = ?
        ORDER BY CASE confidence WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC,
                 updated_at DESC, id DESC
        LIMIT 1
    `, name).Scan(&gi)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query GI: %w", err)
	}
	return &gi, nil
}

// SearchFoods lists foods whose name contains query.
func (s *SQLiteStorage) SearchFoods(ctx context.Context, query string, limit int) ([]models.Food, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+foodColumns+` FROM foods
        WHERE instr(canonical_name, ?) > 0
        ORDER BY id LIMIT ?
    `, fooddb.Canonical(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search foods: %w", err)
	}
	defer rows.Close()

	var foods []models.Food
	for rows.Next() {
		food, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		foods = append(foods, *food)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to search foods: %w", err)
	}

	for i := range foods {
		gi, err := s.bestGI(ctx, foods[i].Name)
		if err != nil {
			return nil, err
		}
		foods[i].GI = gi
	}
	return foods, nil
}

// Categories lists distinct non-empty food categories.
func (s *SQLiteStorage) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM foods WHERE category != '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) CountFoods(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM foods`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count foods: %w", err)
	}
	return n, nil
}
