package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tintin4303/uniplanner-sub000/internal/dto"
	"github.com/tintin4303/uniplanner-sub000/internal/models"
	appErrors "github.com/tintin4303/uniplanner-sub000/pkg/errors"
)

type sectionRepoStub struct {
	items map[string]*models.Section
}

func newSectionRepoStub() *sectionRepoStub {
	return &sectionRepoStub{items: make(map[string]*models.Section)}
}

func (s *sectionRepoStub) List(_ context.Context, filter models.SectionFilter) ([]models.Section, int, error) {
	out := make([]models.Section, 0)
	for _, sec := range s.items {
		if sec.OwnerID == filter.OwnerID {
			out = append(out, *sec)
		}
	}
	return out, len(out), nil
}

func (s *sectionRepoStub) ListActive(_ context.Context, ownerID string) ([]models.Section, error) {
	out := make([]models.Section, 0)
	for _, sec := range s.items {
		if sec.OwnerID == ownerID && sec.Active {
			out = append(out, *sec)
		}
	}
	return out, nil
}

func (s *sectionRepoStub) FindByID(_ context.Context, id string) (*models.Section, error) {
	sec, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *sec
	return &copied, nil
}

func (s *sectionRepoStub) Create(_ context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = "sec-" + section.Name + "-" + section.SectionLabel
	}
	copied := *section
	s.items[section.ID] = &copied
	return nil
}

func (s *sectionRepoStub) Update(_ context.Context, section *models.Section) error {
	existing, ok := s.items[section.ID]
	if !ok || existing.OwnerID != section.OwnerID {
		return sql.ErrNoRows
	}
	copied := *section
	s.items[section.ID] = &copied
	return nil
}

func (s *sectionRepoStub) Delete(_ context.Context, id, ownerID string) error {
	existing, ok := s.items[id]
	if !ok || existing.OwnerID != ownerID {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func (s *sectionRepoStub) DeleteBySubject(_ context.Context, ownerID, name string) (int, error) {
	removed := 0
	for id, sec := range s.items {
		if sec.OwnerID == ownerID && sec.Name == name {
			delete(s.items, id)
			removed++
		}
	}
	return removed, nil
}

func (s *sectionRepoStub) SetActive(_ context.Context, id, ownerID string, active bool) error {
	existing, ok := s.items[id]
	if !ok || existing.OwnerID != ownerID {
		return sql.ErrNoRows
	}
	existing.Active = active
	return nil
}

type cacheStub struct {
	values   map[string][]byte
	deletes  []string
	setCalls int
}

func newCacheStub() *cacheStub {
	return &cacheStub{values: make(map[string][]byte)}
}

func (c *cacheStub) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *cacheStub) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	c.setCalls++
	return nil
}

func (c *cacheStub) DeleteByPattern(_ context.Context, pattern string) error {
	c.deletes = append(c.deletes, pattern)
	return nil
}

func newSectionFixture() (*SectionService, *sectionRepoStub, *cacheStub) {
	repo := newSectionRepoStub()
	cache := newCacheStub()
	return NewSectionService(repo, cache, nil, nil), repo, cache
}

func TestSectionServiceCreateParsesSessions(t *testing.T) {
	svc, repo, cache := newSectionFixture()

	section, err := svc.Create(context.Background(), "u1", dto.CreateSectionRequest{
		Name:         "Calculus",
		SectionLabel: "Section 1",
		Credits:      3,
		Sessions: []dto.SessionPayload{
			{Day: "monday", Start: "09:00", End: "10:30"},
		},
	})
	require.NoError(t, err)
	require.Len(t, section.Sessions, 1)
	assert.Equal(t, models.Monday, section.Sessions[0].Day)
	assert.Equal(t, 540, section.Sessions[0].Start)
	assert.Equal(t, 630, section.Sessions[0].End)
	assert.True(t, section.Active)
	assert.Len(t, repo.items, 1)
	assert.NotEmpty(t, cache.deletes)
}

func TestSectionServiceCreateRejectsBadClock(t *testing.T) {
	svc, _, _ := newSectionFixture()

	_, err := svc.Create(context.Background(), "u1", dto.CreateSectionRequest{
		Name: "Calculus",
		Sessions: []dto.SessionPayload{
			{Day: "MONDAY", Start: "9am", End: "10:30"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTimeFormat.Code, appErrors.FromError(err).Code)
}

func TestSectionServiceCreateUntimedRejectsSessions(t *testing.T) {
	svc, _, _ := newSectionFixture()

	_, err := svc.Create(context.Background(), "u1", dto.CreateSectionRequest{
		Name:   "Thesis",
		NoTime: true,
		Sessions: []dto.SessionPayload{
			{Day: "MONDAY", Start: "09:00", End: "10:00"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSectionServiceGetScopedToOwner(t *testing.T) {
	svc, repo, _ := newSectionFixture()
	repo.items["s1"] = &models.Section{ID: "s1", OwnerID: "someone-else", Name: "Calculus"}

	_, err := svc.Get(context.Background(), "s1", "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSectionServiceApplyBatchStopsAtFirstFailure(t *testing.T) {
	svc, repo, _ := newSectionFixture()

	add := func(name, label string) dto.MutationOp {
		payload, _ := json.Marshal(dto.CreateSectionRequest{
			Name:         name,
			SectionLabel: label,
			NoTime:       true,
		})
		return dto.MutationOp{Op: dto.MutationAddSection, Payload: payload}
	}
	badRemove, _ := json.Marshal(dto.RemoveSubjectPayload{Name: "Unknown"})

	result, err := svc.ApplyBatch(context.Background(), "u1", dto.BatchMutationRequest{
		Ops: []dto.MutationOp{
			add("Calculus", "1"),
			{Op: dto.MutationRemoveSubject, Payload: badRemove},
			add("Physics", "1"),
		},
	})
	require.Error(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Len(t, repo.items, 1)
}

func TestSectionServiceApplyBatchSetFilter(t *testing.T) {
	svc, _, cache := newSectionFixture()

	payload, _ := json.Marshal(dto.FilterSpecRequest{DaysOff: []string{"FRIDAY"}})
	result, err := svc.ApplyBatch(context.Background(), "u1", dto.BatchMutationRequest{
		Ops: []dto.MutationOp{{Op: dto.MutationSetFilter, Payload: payload}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	require.NotNil(t, result.Filter)
	assert.Equal(t, []string{"FRIDAY"}, result.Filter.DaysOff)

	var stored dto.FilterSpecRequest
	require.NoError(t, cache.Get(context.Background(), filterKey("u1"), &stored))
	assert.Equal(t, []string{"FRIDAY"}, stored.DaysOff)
}

func TestSectionServiceApplyBatchRejectsMalformedFilter(t *testing.T) {
	svc, _, _ := newSectionFixture()

	bound := "25:99"
	payload, _ := json.Marshal(dto.FilterSpecRequest{StartNotBefore: &bound})
	result, err := svc.ApplyBatch(context.Background(), "u1", dto.BatchMutationRequest{
		Ops: []dto.MutationOp{{Op: dto.MutationSetFilter, Payload: payload}},
	})
	require.Error(t, err)
	assert.Equal(t, 0, result.Applied)
}

func TestSectionServiceRemoveSubjectDeletesAllSections(t *testing.T) {
	svc, repo, _ := newSectionFixture()
	repo.items["a"] = &models.Section{ID: "a", OwnerID: "u1", Name: "Calculus"}
	repo.items["b"] = &models.Section{ID: "b", OwnerID: "u1", Name: "Calculus"}
	repo.items["c"] = &models.Section{ID: "c", OwnerID: "u1", Name: "Physics"}

	payload, _ := json.Marshal(dto.RemoveSubjectPayload{Name: "Calculus"})
	result, err := svc.ApplyBatch(context.Background(), "u1", dto.BatchMutationRequest{
		Ops: []dto.MutationOp{{Op: dto.MutationRemoveSubject, Payload: payload}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Len(t, repo.items, 1)
}
