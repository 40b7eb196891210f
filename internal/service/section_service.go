package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tintin4303/uniplanner-sub000/internal/dto"
	"github.com/tintin4303/uniplanner-sub000/internal/models"
	"github.com/tintin4303/uniplanner-sub000/internal/planner"
	appErrors "github.com/tintin4303/uniplanner-sub000/pkg/errors"
)

type sectionRepository interface {
	List(ctx context.Context, filter models.SectionFilter) ([]models.Section, int, error)
	ListActive(ctx context.Context, ownerID string) ([]models.Section, error)
	FindByID(ctx context.Context, id string) (*models.Section, error)
	Create(ctx context.Context, section *models.Section) error
	Update(ctx context.Context, section *models.Section) error
	Delete(ctx context.Context, id, ownerID string) error
	DeleteBySubject(ctx context.Context, ownerID, name string) (int, error)
	SetActive(ctx context.Context, id, ownerID string, active bool) error
}

type plannerCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// SectionService manages a user's candidate sections.
type SectionService struct {
	repo      sectionRepository
	cache     plannerCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSectionService wires section dependencies.
func NewSectionService(repo sectionRepository, cache plannerCache, validate *validator.Validate, logger *zap.Logger) *SectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the owner's sections with pagination metadata.
func (s *SectionService) List(ctx context.Context, filter models.SectionFilter) ([]models.Section, *models.Pagination, error) {
	sections, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return sections, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one section, scoped to its owner.
func (s *SectionService) Get(ctx context.Context, id, ownerID string) (*models.Section, error) {
	section, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	if section.OwnerID != ownerID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}
	return section, nil
}

// Create validates and registers a new candidate section.
func (s *SectionService) Create(ctx context.Context, ownerID string, req dto.CreateSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	sessions, err := buildSessions(req.NoTime, req.Sessions)
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	section := &models.Section{
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(req.Name),
		SectionLabel: strings.TrimSpace(req.SectionLabel),
		Credits:      req.Credits,
		NoTime:       req.NoTime,
		Active:       active,
		Sessions:     sessions,
	}
	if section.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name must not be blank")
	}
	if err := s.repo.Create(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	s.invalidatePlannerCache(ctx, ownerID)
	return section, nil
}

// Update rewrites a section's mutable fields.
func (s *SectionService) Update(ctx context.Context, id, ownerID string, req dto.UpdateSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	section, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	sessions, err := buildSessions(req.NoTime, req.Sessions)
	if err != nil {
		return nil, err
	}

	section.Name = strings.TrimSpace(req.Name)
	section.SectionLabel = strings.TrimSpace(req.SectionLabel)
	section.Credits = req.Credits
	section.NoTime = req.NoTime
	section.Sessions = sessions
	if req.Active != nil {
		section.Active = *req.Active
	}
	if section.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name must not be blank")
	}
	if err := s.repo.Update(ctx, section); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update section")
	}
	s.invalidatePlannerCache(ctx, ownerID)
	return section, nil
}

// Delete removes one section.
func (s *SectionService) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete section")
	}
	s.invalidatePlannerCache(ctx, ownerID)
	return nil
}

// SetActive toggles whether a section participates in generation.
func (s *SectionService) SetActive(ctx context.Context, id, ownerID string, active bool) error {
	if err := s.repo.SetActive(ctx, id, ownerID, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle section")
	}
	s.invalidatePlannerCache(ctx, ownerID)
	return nil
}

func (s *SectionService) invalidatePlannerCache(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, generateCachePattern(ownerID)); err != nil {
		s.logger.Warn("failed to invalidate planner cache", zap.String("ownerId", ownerID), zap.Error(err))
	}
}

// buildSessions parses wire sessions into model form. Untimed sections must
// not carry sessions; timed sections must carry at least one.
func buildSessions(noTime bool, payloads []dto.SessionPayload) ([]models.ClassSession, error) {
	if noTime {
		if len(payloads) > 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "untimed sections must not carry sessions")
		}
		return nil, nil
	}
	if len(payloads) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timed sections need at least one session")
	}

	sessions := make([]models.ClassSession, 0, len(payloads))
	for i, p := range payloads {
		day := models.ParseWeekday(p.Day)
		if day == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("sessions[%d]: unknown day %q", i, p.Day))
		}
		start, err := planner.ParseClock(p.Start)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("sessions[%d]: bad start %q", i, p.Start))
		}
		end, err := planner.ParseClock(p.End)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("sessions[%d]: bad end %q", i, p.End))
		}
		if end <= start {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("sessions[%d]: end must be after start", i))
		}
		sessions = append(sessions, models.ClassSession{Day: day, Start: start, End: end})
	}
	return sessions, nil
}
