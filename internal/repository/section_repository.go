package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tintin4303/uniplanner-sub000/internal/models"
)

// SectionRepository persists candidate sections. Session lists are stored as
// a JSONB column; they are tiny and always read back whole.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const sectionColumns = "id, owner_id, name, section_label, credits, no_time, active, sessions, created_at, updated_at"

// List returns the owner's sections with optional name search and pagination.
func (r *SectionRepository) List(ctx context.Context, filter models.SectionFilter) ([]models.Section, int, error) {
	base := "FROM sections WHERE owner_id = $1"
	args := []interface{}{filter.OwnerID}

	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(name) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.ActiveOnly {
		base += " AND active = TRUE"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY name ASC, section_label ASC, created_at ASC LIMIT %d OFFSET %d", sectionColumns, base, size, offset)
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sections: %w", err)
	}
	for i := range sections {
		if err := decodeSessions(&sections[i]); err != nil {
			return nil, 0, err
		}
	}

	var total int
	countQuery := "SELECT COUNT(*) " + base
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sections: %w", err)
	}
	return sections, total, nil
}

// ListActive returns every active section of an owner in stable input order
// for the generator: subject name, then label, then creation time.
func (r *SectionRepository) ListActive(ctx context.Context, ownerID string) ([]models.Section, error) {
	query := fmt.Sprintf("SELECT %s FROM sections WHERE owner_id = $1 AND active = TRUE ORDER BY name ASC, section_label ASC, created_at ASC", sectionColumns)
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, ownerID); err != nil {
		return nil, fmt.Errorf("list active sections: %w", err)
	}
	for i := range sections {
		if err := decodeSessions(&sections[i]); err != nil {
			return nil, err
		}
	}
	return sections, nil
}

// FindByID loads one section.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	query := fmt.Sprintf("SELECT %s FROM sections WHERE id = $1", sectionColumns)
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	if err := decodeSessions(&section); err != nil {
		return nil, err
	}
	return &section, nil
}

// Create inserts a new section.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now
	if err := encodeSessions(section); err != nil {
		return err
	}

	const query = `INSERT INTO sections (id, owner_id, name, section_label, credits, no_time, active, sessions, created_at, updated_at)
		VALUES (:id, :owner_id, :name, :section_label, :credits, :no_time, :active, :sessions, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("insert section: %w", err)
	}
	return nil
}

// Update rewrites all mutable fields of a section.
func (r *SectionRepository) Update(ctx context.Context, section *models.Section) error {
	section.UpdatedAt = time.Now().UTC()
	if err := encodeSessions(section); err != nil {
		return err
	}

	const query = `UPDATE sections
		SET name = :name, section_label = :section_label, credits = :credits,
		    no_time = :no_time, active = :active, sessions = :sessions, updated_at = :updated_at
		WHERE id = :id AND owner_id = :owner_id`
	result, err := r.db.NamedExecContext(ctx, query, section)
	if err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes a section owned by ownerID.
func (r *SectionRepository) Delete(ctx context.Context, id, ownerID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sections WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return requireRowAffected(result)
}

// DeleteBySubject removes every section of a subject name for an owner and
// returns the number of removed rows.
func (r *SectionRepository) DeleteBySubject(ctx context.Context, ownerID, name string) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sections WHERE owner_id = $1 AND LOWER(name) = LOWER($2)", ownerID, name)
	if err != nil {
		return 0, fmt.Errorf("delete subject sections: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete subject sections: %w", err)
	}
	return int(affected), nil
}

// SetActive toggles a section's generation eligibility.
func (r *SectionRepository) SetActive(ctx context.Context, id, ownerID string, active bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE sections SET active = $1, updated_at = $2 WHERE id = $3 AND owner_id = $4",
		active, time.Now().UTC(), id, ownerID)
	if err != nil {
		return fmt.Errorf("set section active: %w", err)
	}
	return requireRowAffected(result)
}

func encodeSessions(section *models.Section) error {
	sessions := section.Sessions
	if sessions == nil {
		sessions = []models.ClassSession{}
	}
	raw, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	section.SessionsRaw = raw
	return nil
}

func decodeSessions(section *models.Section) error {
	if len(section.SessionsRaw) == 0 {
		section.Sessions = nil
		return nil
	}
	if err := json.Unmarshal(section.SessionsRaw, &section.Sessions); err != nil {
		return fmt.Errorf("decode sessions for section %s: %w", section.ID, err)
	}
	return nil
}
