package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/liftwise/internal/models"
)

// ContraindicationsFor returns the rules matching any of the given medical
// conditions. Matching is case-insensitive on the condition name. This
// satisfies the rule source interface used by the adjustment validator.
func (db *DB) ContraindicationsFor(ctx context.Context, conditions []string) ([]models.ContraindicationRule, error) {
	if len(conditions) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(conditions))
	for i, c := range conditions {
		lowered[i] = strings.ToLower(strings.TrimSpace(c))
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT condition, exercises_to_avoid
		FROM contraindications WHERE LOWER(condition) = ANY($1)
		ORDER BY condition
	`, lowered)
	if err != nil {
		return nil, fmt.Errorf("querying contraindications: %w", err)
	}
	defer rows.Close()

	var result []models.ContraindicationRule
	for rows.Next() {
		var r models.ContraindicationRule
		if err := rows.Scan(&r.Condition, &r.ExercisesToAvoid); err != nil {
			return nil, fmt.Errorf("scanning contraindication: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// ListContraindications returns every stored rule.
func (db *DB) ListContraindications(ctx context.Context) ([]models.ContraindicationRule, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT condition, exercises_to_avoid FROM contraindications ORDER BY condition`)
	if err != nil {
		return nil, fmt.Errorf("querying contraindications: %w", err)
	}
	defer rows.Close()

	var result []models.ContraindicationRule
	for rows.Next() {
		var r models.ContraindicationRule
		if err := rows.Scan(&r.Condition, &r.ExercisesToAvoid); err != nil {
			return nil, fmt.Errorf("scanning contraindication: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// UpsertContraindication inserts or replaces a rule.
func (db *DB) UpsertContraindication(ctx context.Context, rule models.ContraindicationRule) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO contraindications (condition, exercises_to_avoid)
		VALUES ($1, $2)
		ON CONFLICT (condition) DO UPDATE SET exercises_to_avoid = EXCLUDED.exercises_to_avoid
	`, rule.Condition, rule.ExercisesToAvoid)
	if err != nil {
		return fmt.Errorf("upserting contraindication: %w", err)
	}
	return nil
}
