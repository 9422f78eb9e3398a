package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/liftwise/internal/models"
)

// PlanRecord is a stored plan together with its owner.
type PlanRecord struct {
	UserID    string              `json:"userId"`
	Plan      *models.WorkoutPlan `json:"plan"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// PlanSummary is a plan listing row without the full schedule.
type PlanSummary struct {
	PlanID       uuid.UUID  `json:"planId"`
	PlanName     string     `json:"planName"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastAdjusted *time.Time `json:"lastAdjusted,omitempty"`
}

// InsertPlan stores a new plan for a user.
func (db *DB) InsertPlan(ctx context.Context, userID string, plan *models.WorkoutPlan) error {
	schedule, err := json.Marshal(plan.WeeklySchedule)
	if err != nil {
		return fmt.Errorf("encoding schedule: %w", err)
	}
	archived, err := json.Marshal(plan.ArchivedSessions)
	if err != nil {
		return fmt.Errorf("encoding archived sessions: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO plans (id, user_id, name, weekly_schedule, archived_sessions, applied_changes, last_adjusted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, plan.PlanID, userID, plan.PlanName, schedule, archived, plan.AppliedChanges, plan.LastAdjusted)
	if err != nil {
		return fmt.Errorf("inserting plan: %w", err)
	}
	return nil
}

// GetPlan returns a plan with its owner and adjustment history, or ErrNotFound.
func (db *DB) GetPlan(ctx context.Context, id uuid.UUID) (*PlanRecord, error) {
	rec := &PlanRecord{Plan: &models.WorkoutPlan{}}
	var schedule, archived []byte

	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, name, weekly_schedule, archived_sessions, applied_changes, last_adjusted, created_at, updated_at
		FROM plans WHERE id = $1
	`, id).Scan(&rec.Plan.PlanID, &rec.UserID, &rec.Plan.PlanName, &schedule, &archived,
		&rec.Plan.AppliedChanges, &rec.Plan.LastAdjusted, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan: %w", err)
	}

	if err := json.Unmarshal(schedule, &rec.Plan.WeeklySchedule); err != nil {
		return nil, fmt.Errorf("decoding schedule: %w", err)
	}
	rec.Plan.WeeklySchedule.Normalize()
	if len(archived) > 0 {
		if err := json.Unmarshal(archived, &rec.Plan.ArchivedSessions); err != nil {
			return nil, fmt.Errorf("decoding archived sessions: %w", err)
		}
	}

	history, err := db.ListAdjustments(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Plan.AdjustmentHistory = history

	return rec, nil
}

// ListPlans returns plan summaries for a user, newest first.
func (db *DB) ListPlans(ctx context.Context, userID string) ([]PlanSummary, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, created_at, last_adjusted
		FROM plans WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	var result []PlanSummary
	for rows.Next() {
		var s PlanSummary
		if err := rows.Scan(&s.PlanID, &s.PlanName, &s.CreatedAt, &s.LastAdjusted); err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// UpdatePlan replaces the mutable parts of a stored plan after an adjustment.
func (db *DB) UpdatePlan(ctx context.Context, plan *models.WorkoutPlan) error {
	schedule, err := json.Marshal(plan.WeeklySchedule)
	if err != nil {
		return fmt.Errorf("encoding schedule: %w", err)
	}
	archived, err := json.Marshal(plan.ArchivedSessions)
	if err != nil {
		return fmt.Errorf("encoding archived sessions: %w", err)
	}

	tag, err := db.Pool.Exec(ctx, `
		UPDATE plans SET
			name = $2,
			weekly_schedule = $3,
			archived_sessions = $4,
			applied_changes = $5,
			last_adjusted = $6,
			updated_at = NOW()
		WHERE id = $1
	`, plan.PlanID, plan.PlanName, schedule, archived, plan.AppliedChanges, plan.LastAdjusted)
	if err != nil {
		return fmt.Errorf("updating plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePlan removes a plan and its adjustment history.
func (db *DB) DeletePlan(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertAdjustment appends one adjustment record to a plan's history.
func (db *DB) InsertAdjustment(ctx context.Context, planID uuid.UUID, rec models.AdjustmentRecord) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO plan_adjustments (id, plan_id, feedback, source, applied, skipped, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, planID, rec.Feedback, rec.Source, rec.Applied, rec.Skipped, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting adjustment: %w", err)
	}
	return nil
}

// ListAdjustments returns a plan's adjustment history, oldest first.
func (db *DB) ListAdjustments(ctx context.Context, planID uuid.UUID) ([]models.AdjustmentRecord, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, feedback, source, applied, skipped, created_at
		FROM plan_adjustments WHERE plan_id = $1 ORDER BY created_at
	`, planID)
	if err != nil {
		return nil, fmt.Errorf("querying adjustments: %w", err)
	}
	defer rows.Close()

	var result []models.AdjustmentRecord
	for rows.Next() {
		var r models.AdjustmentRecord
		if err := rows.Scan(&r.ID, &r.Feedback, &r.Source, &r.Applied, &r.Skipped, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning adjustment: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
