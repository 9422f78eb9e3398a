package storage

import (
	"context"
	"fmt"
	"strings"
)

// EquipmentAlternatives returns the substitution table keyed by lowercased
// equipment name.
func (db *DB) EquipmentAlternatives(ctx context.Context) (map[string]string, error) {
	rows, err := db.Pool.Query(ctx, `SELECT equipment, alternative FROM equipment_alternatives`)
	if err != nil {
		return nil, fmt.Errorf("querying equipment alternatives: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var equipment, alternative string
		if err := rows.Scan(&equipment, &alternative); err != nil {
			return nil, fmt.Errorf("scanning equipment alternative: %w", err)
		}
		result[strings.ToLower(equipment)] = alternative
	}
	return result, rows.Err()
}

// UpsertEquipmentAlternative inserts or replaces one substitution row.
func (db *DB) UpsertEquipmentAlternative(ctx context.Context, equipment, alternative string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO equipment_alternatives (equipment, alternative)
		VALUES (LOWER($1), $2)
		ON CONFLICT (equipment) DO UPDATE SET alternative = EXCLUDED.alternative
	`, equipment, alternative)
	if err != nil {
		return fmt.Errorf("upserting equipment alternative: %w", err)
	}
	return nil
}
