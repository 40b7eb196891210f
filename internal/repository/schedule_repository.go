package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tintin4303/uniplanner-sub000/internal/models"
)

// ScheduleRepository persists saved schedule snapshots.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const savedScheduleColumns = "id, owner_id, label, payload, created_at"

// Create stores a snapshot of a generated schedule.
func (r *ScheduleRepository) Create(ctx context.Context, saved *models.SavedSchedule) error {
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	saved.CreatedAt = time.Now().UTC()
	if saved.Schedule != nil {
		raw, err := json.Marshal(saved.Schedule)
		if err != nil {
			return fmt.Errorf("encode schedule payload: %w", err)
		}
		saved.Payload = raw
	}

	const query = `INSERT INTO saved_schedules (id, owner_id, label, payload, created_at)
		VALUES (:id, :owner_id, :label, :payload, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, saved); err != nil {
		return fmt.Errorf("insert saved schedule: %w", err)
	}
	return nil
}

// FindByID loads one saved schedule with its decoded snapshot. Saved
// schedules are shareable by id, so no owner scoping here; callers decide.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.SavedSchedule, error) {
	query := fmt.Sprintf("SELECT %s FROM saved_schedules WHERE id = $1", savedScheduleColumns)
	var saved models.SavedSchedule
	if err := r.db.GetContext(ctx, &saved, query, id); err != nil {
		return nil, err
	}
	if err := decodePayload(&saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListByOwner returns all schedules saved by one user, newest first.
func (r *ScheduleRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.SavedSchedule, error) {
	query := fmt.Sprintf("SELECT %s FROM saved_schedules WHERE owner_id = $1 ORDER BY created_at DESC", savedScheduleColumns)
	var saved []models.SavedSchedule
	if err := r.db.SelectContext(ctx, &saved, query, ownerID); err != nil {
		return nil, fmt.Errorf("list saved schedules: %w", err)
	}
	for i := range saved {
		if err := decodePayload(&saved[i]); err != nil {
			return nil, err
		}
	}
	return saved, nil
}

// Delete removes a saved schedule owned by ownerID.
func (r *ScheduleRepository) Delete(ctx context.Context, id, ownerID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM saved_schedules WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete saved schedule: %w", err)
	}
	return requireRowAffected(result)
}

func decodePayload(saved *models.SavedSchedule) error {
	if len(saved.Payload) == 0 {
		return nil
	}
	var schedule models.Schedule
	if err := json.Unmarshal(saved.Payload, &schedule); err != nil {
		return fmt.Errorf("decode saved schedule %s: %w", saved.ID, err)
	}
	saved.Schedule = &schedule
	return nil
}
