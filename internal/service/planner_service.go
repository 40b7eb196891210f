package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tintin4303/uniplanner-sub000/internal/dto"
	"github.com/tintin4303/uniplanner-sub000/internal/models"
	"github.com/tintin4303/uniplanner-sub000/internal/planner"
	appErrors "github.com/tintin4303/uniplanner-sub000/pkg/errors"
)

type activeSectionLister interface {
	ListActive(ctx context.Context, ownerID string) ([]models.Section, error)
}

type savedScheduleRepository interface {
	Create(ctx context.Context, saved *models.SavedSchedule) error
	FindByID(ctx context.Context, id string) (*models.SavedSchedule, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.SavedSchedule, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type generationObserver interface {
	ObserveGeneration(total int, capped bool, duration time.Duration)
}

// PlannerService runs schedule generation and manages retained result sets
// and saved snapshots.
type PlannerService struct {
	sections  activeSectionLister
	saved     savedScheduleRepository
	cache     plannerCache
	metrics   generationObserver
	validator *validator.Validate
	logger    *zap.Logger
	store     *resultStore
	cacheTTL  time.Duration
}

// PlannerConfig governs retention of generated result sets.
type PlannerConfig struct {
	ResultTTL time.Duration
	CacheTTL  time.Duration
}

// NewPlannerService wires planner dependencies.
func NewPlannerService(
	sections activeSectionLister,
	saved savedScheduleRepository,
	cache plannerCache,
	metrics generationObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg PlannerConfig,
) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 30 * time.Minute
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &PlannerService{
		sections:  sections,
		saved:     saved,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		store:     newResultStore(cfg.ResultTTL),
		cacheTTL:  cfg.CacheTTL,
	}
}

// Generate enumerates conflict-free schedules from the owner's active
// sections. The unfiltered set is retained under the returned resultId for
// follow-up refilter and save calls; the response itself carries only
// schedules passing the effective filter.
func (s *PlannerService) Generate(ctx context.Context, ownerID string, req dto.GenerateRequest) (*dto.GenerateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}

	filterReq := req.Filter
	if filterReq.Empty() {
		filterReq = s.storedFilter(ctx, ownerID)
	}
	filter, err := parseFilterSpec(filterReq)
	if err != nil {
		return nil, err
	}

	cacheKey := generateCacheKey(ownerID, filterFingerprint(filter))
	if cached := s.cachedResponse(ctx, cacheKey, ownerID, filter); cached != nil {
		return cached, nil
	}

	sections, err := s.sections.ListActive(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sections")
	}

	started := time.Now()
	schedules := planner.Generate(sections, nil)
	capped := len(schedules) >= planner.MaxSchedules
	if s.metrics != nil {
		s.metrics.ObserveGeneration(len(schedules), capped, time.Since(started))
	}

	result := generationResult{
		ResultID:  uuid.NewString(),
		OwnerID:   ownerID,
		Schedules: schedules,
		Capped:    capped,
		CreatedAt: time.Now().UTC(),
	}
	s.store.Save(result)

	// The unfiltered set is what gets cached: response indices address it, so
	// a hit must be able to restore the full set before rebuilding the view.
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache generation result", zap.String("ownerId", ownerID), zap.Error(err))
		}
	}

	resp := s.buildResponse(result, filter)
	s.logger.Info("generated schedules",
		zap.String("ownerId", ownerID),
		zap.Int("total", len(schedules)),
		zap.Int("returned", resp.Total),
		zap.Bool("capped", capped))
	return resp, nil
}

// Refilter re-applies a filter to a retained result set. The retained set is
// untouched; only the response view narrows.
func (s *PlannerService) Refilter(ctx context.Context, ownerID string, req dto.RefilterRequest) (*dto.GenerateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid refilter payload")
	}
	result, err := s.ownedResult(req.ResultID, ownerID)
	if err != nil {
		return nil, err
	}
	filter, err := parseFilterSpec(&req.Filter)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(result, filter), nil
}

// Save persists one schedule out of a retained result set as a snapshot.
func (s *PlannerService) Save(ctx context.Context, ownerID string, req dto.SaveScheduleRequest) (*models.SavedSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save payload")
	}
	result, err := s.ownedResult(req.ResultID, ownerID)
	if err != nil {
		return nil, err
	}
	if req.Index < 0 || req.Index >= len(result.Schedules) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("index %d out of range, result has %d schedules", req.Index, len(result.Schedules)))
	}

	schedule := result.Schedules[req.Index]
	saved := &models.SavedSchedule{
		OwnerID:  ownerID,
		Label:    req.Label,
		Schedule: &schedule,
	}
	if err := s.saved.Create(ctx, saved); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule")
	}
	return saved, nil
}

// ListSaved returns the owner's saved schedules, newest first.
func (s *PlannerService) ListSaved(ctx context.Context, ownerID string) ([]models.SavedSchedule, error) {
	list, err := s.saved.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list saved schedules")
	}
	return list, nil
}

// GetSaved loads one saved schedule by id. Any authenticated user may read a
// saved schedule by its id; that is how friends share schedules for
// comparison.
func (s *PlannerService) GetSaved(ctx context.Context, id string) (*models.SavedSchedule, error) {
	saved, err := s.saved.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "saved schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load saved schedule")
	}
	return saved, nil
}

// DeleteSaved removes one of the owner's saved schedules.
func (s *PlannerService) DeleteSaved(ctx context.Context, id, ownerID string) error {
	if err := s.saved.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "saved schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete saved schedule")
	}
	return nil
}

// Summary derives tags for one saved schedule.
func (s *PlannerService) Summary(ctx context.Context, id string) (*dto.SummaryResponse, error) {
	saved, err := s.GetSaved(ctx, id)
	if err != nil {
		return nil, err
	}
	if saved.Schedule == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "saved schedule has no payload")
	}
	return &dto.SummaryResponse{ScheduleID: saved.ID, Tags: planner.Summarize(*saved.Schedule)}, nil
}

func (s *PlannerService) buildResponse(result generationResult, filter *models.FilterSpec) *dto.GenerateResponse {
	out := make([]dto.GeneratedSchedule, 0, len(result.Schedules))
	for i, schedule := range result.Schedules {
		if !filter.Empty() && !planner.MatchesFilter(schedule, filter) {
			continue
		}
		out = append(out, dto.GeneratedSchedule{
			Index:    i,
			Sections: schedule.Sections,
			Credits:  schedule.TotalCredits(),
			Tags:     planner.Summarize(schedule),
		})
	}
	return &dto.GenerateResponse{
		ResultID:  result.ResultID,
		Total:     len(out),
		Capped:    result.Capped,
		Schedules: out,
	}
}

func (s *PlannerService) ownedResult(resultID, ownerID string) (generationResult, error) {
	result, ok := s.store.Get(resultID)
	if !ok || result.OwnerID != ownerID {
		return generationResult{}, appErrors.Clone(appErrors.ErrNotFound, "result set not found or expired")
	}
	return result, nil
}

// storedFilter loads the owner's default filter set via the set-filter
// mutation op. A missing or unreadable entry simply means no filter.
func (s *PlannerService) storedFilter(ctx context.Context, ownerID string) *dto.FilterSpecRequest {
	if s.cache == nil {
		return nil
	}
	var filter dto.FilterSpecRequest
	if err := s.cache.Get(ctx, filterKey(ownerID), &filter); err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("failed to load stored filter", zap.String("ownerId", ownerID), zap.Error(err))
		}
		return nil
	}
	return &filter
}

// cachedResponse rebuilds a generate response from a cached unfiltered result
// set, re-registering that set in the retention store so resultId follow-ups
// keep working after a cache hit. Indices in the rebuilt view address the full
// enumeration, exactly as on a cache miss.
func (s *PlannerService) cachedResponse(ctx context.Context, key, ownerID string, filter *models.FilterSpec) *dto.GenerateResponse {
	if s.cache == nil {
		return nil
	}
	var result generationResult
	if err := s.cache.Get(ctx, key, &result); err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("planner cache read failed", zap.Error(err))
		}
		return nil
	}
	if result.ResultID == "" || result.OwnerID != ownerID {
		return nil
	}
	if _, ok := s.store.Get(result.ResultID); !ok {
		result.CreatedAt = time.Now().UTC()
		s.store.Save(result)
	}
	return s.buildResponse(result, filter)
}

// --- Result retention ---

type generationResult struct {
	ResultID  string
	OwnerID   string
	Schedules []models.Schedule
	Capped    bool
	CreatedAt time.Time
}

type resultStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]generationResult
}

func newResultStore(ttl time.Duration) *resultStore {
	return &resultStore{
		ttl:   ttl,
		items: make(map[string]generationResult),
	}
}

func (s *resultStore) Save(result generationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[result.ResultID] = result
}

func (s *resultStore) Get(id string) (generationResult, bool) {
	s.mu.RLock()
	result, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return generationResult{}, false
	}
	if time.Since(result.CreatedAt) > s.ttl {
		s.Delete(id)
		return generationResult{}, false
	}
	return result, true
}

func (s *resultStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// --- Cache keys ---

func filterKey(ownerID string) string {
	return "planner:filter:" + ownerID
}

func generateCacheKey(ownerID, fingerprint string) string {
	return "planner:generate:" + ownerID + ":" + fingerprint
}

func generateCachePattern(ownerID string) string {
	return "planner:generate:" + ownerID + ":*"
}

func filterFingerprint(filter *models.FilterSpec) string {
	if filter.Empty() {
		return "none"
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return "none"
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}
