package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/claude/liftwise/internal/models"
)

// UpsertProfile inserts or fully replaces a user profile.
func (db *DB) UpsertProfile(ctx context.Context, p *models.UserProfile) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO profiles (user_id, goals, fitness_level, medical_conditions, workout_frequency, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			goals = EXCLUDED.goals,
			fitness_level = EXCLUDED.fitness_level,
			medical_conditions = EXCLUDED.medical_conditions,
			workout_frequency = EXCLUDED.workout_frequency,
			updated_at = NOW()
	`, p.UserID, p.Goals, p.FitnessLevel, p.MedicalConditions, p.Preferences.WorkoutFrequency)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

// GetProfile returns the profile for a user, or ErrNotFound.
func (db *DB) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	p := &models.UserProfile{}
	err := db.Pool.QueryRow(ctx, `
		SELECT user_id, goals, fitness_level, medical_conditions, workout_frequency
		FROM profiles WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.Goals, &p.FitnessLevel, &p.MedicalConditions, &p.Preferences.WorkoutFrequency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

// DeleteProfile removes a profile and, via cascade, its plans.
func (db *DB) DeleteProfile(ctx context.Context, userID string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
