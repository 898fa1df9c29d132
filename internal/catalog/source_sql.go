package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SQLSource reads the food_catalog table created by the catalog migrations.
// The query is portable between Postgres and SQLite.
type SQLSource struct {
	DB *sql.DB
}

// List returns catalog rows ordered by position.
func (s *SQLSource) List(ctx context.Context) ([]FoodRecord, error) {
	const query = `
SELECT name, calories, protein, carbs, fat, fiber, base_confidence, portion, ingredients
FROM food_catalog
ORDER BY position ASC`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query food_catalog: %w", err)
	}
	defer rows.Close()

	var out []FoodRecord
	for rows.Next() {
		var r FoodRecord
		var ingredients sql.NullString
		if err := rows.Scan(
			&r.Name,
			&r.Calories,
			&r.Protein,
			&r.Carbs,
			&r.Fat,
			&r.Fiber,
			&r.Confidence,
			&r.Portion,
			&ingredients,
		); err != nil {
			return nil, fmt.Errorf("scan food_catalog: %w", err)
		}
		if ingredients.Valid && ingredients.String != "" {
			if err := json.Unmarshal([]byte(ingredients.String), &r.Ingredients); err != nil {
				return nil, fmt.Errorf("decode ingredients for %q: %w", r.Name, err)
			}
		}
		if r.Ingredients == nil {
			r.Ingredients = []string{}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate food_catalog: %w", err)
	}
	return out, nil
}

var _ Source = (*SQLSource)(nil)
