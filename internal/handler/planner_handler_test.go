package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/tintin4303/uniplanner-sub000/internal/dto"
	internalmiddleware "github.com/tintin4303/uniplanner-sub000/internal/middleware"
	"github.com/tintin4303/uniplanner-sub000/internal/models"
	"github.com/tintin4303/uniplanner-sub000/internal/service"
	"github.com/tintin4303/uniplanner-sub000/pkg/response"
)

type sectionListerMock struct {
	sections []models.Section
}

func (m sectionListerMock) ListActive(_ context.Context, _ string) ([]models.Section, error) {
	return m.sections, nil
}

type savedStoreMock struct {
	items map[string]*models.SavedSchedule
}

func newSavedStoreMock() *savedStoreMock {
	return &savedStoreMock{items: make(map[string]*models.SavedSchedule)}
}

func (m *savedStoreMock) Create(_ context.Context, saved *models.SavedSchedule) error {
	if saved.ID == "" {
		saved.ID = "saved-1"
	}
	m.items[saved.ID] = saved
	return nil
}

func (m *savedStoreMock) FindByID(_ context.Context, id string) (*models.SavedSchedule, error) {
	saved, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return saved, nil
}

func (m *savedStoreMock) ListByOwner(_ context.Context, ownerID string) ([]models.SavedSchedule, error) {
	out := make([]models.SavedSchedule, 0)
	for _, saved := range m.items {
		if saved.OwnerID == ownerID {
			out = append(out, *saved)
		}
	}
	return out, nil
}

func (m *savedStoreMock) Delete(_ context.Context, id, ownerID string) error {
	saved, ok := m.items[id]
	if !ok || saved.OwnerID != ownerID {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func timetableSection(name, label string, day models.Weekday, start, end int) models.Section {
	return models.Section{
		ID:           name + "-" + label,
		OwnerID:      "u1",
		Name:         name,
		SectionLabel: label,
		Credits:      3,
		Active:       true,
		Sessions:     []models.ClassSession{{Day: day, Start: start, End: end}},
	}
}

func newPlannerHandler(sections []models.Section, saved *savedStoreMock) *PlannerHandler {
	svc := service.NewPlannerService(sectionListerMock{sections: sections}, saved, nil, nil, nil, nil, service.PlannerConfig{})
	return NewPlannerHandler(svc)
}

func authedContext(t *testing.T, w *httptest.ResponseRecorder, method, target string, body []byte) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Email: "student@example.com"})
	return c
}

func TestPlannerHandlerGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sections := []models.Section{
		timetableSection("Math", "1", models.Monday, 540, 630),
		timetableSection("Physics", "1", models.Tuesday, 540, 630),
	}
	handler := newPlannerHandler(sections, newSavedStoreMock())

	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPost, "/planner/generate", []byte(`{}`))

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data dto.GenerateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, 1, envelope.Data.Total)
	require.NotEmpty(t, envelope.Data.ResultID)
	require.Len(t, envelope.Data.Schedules[0].Sections, 2)
}

func TestPlannerHandlerGenerateUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPlannerHandler(nil, newSavedStoreMock())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/planner/generate", bytes.NewReader([]byte(`{}`)))
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlannerHandlerSaveThenSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	saved := newSavedStoreMock()
	handler := newPlannerHandler([]models.Section{timetableSection("Math", "1", models.Friday, 840, 930)}, saved)

	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPost, "/planner/generate", []byte(`{}`))
	handler.Generate(c)
	require.Equal(t, http.StatusOK, w.Code)

	var generated struct {
		Data dto.GenerateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &generated))

	savePayload, _ := json.Marshal(dto.SaveScheduleRequest{
		ResultID: generated.Data.ResultID,
		Index:    0,
		Label:    "fall plan",
	})
	w = httptest.NewRecorder()
	c = authedContext(t, w, http.MethodPost, "/planner/save", savePayload)
	handler.Save(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, saved.items, 1)

	var savedID string
	for id := range saved.items {
		savedID = id
	}

	w = httptest.NewRecorder()
	c = authedContext(t, w, http.MethodGet, "/planner/saved/"+savedID+"/summary", nil)
	c.Params = gin.Params{{Key: "id", Value: savedID}}
	handler.Summary(c)
	require.Equal(t, http.StatusOK, w.Code)

	var summary struct {
		Data dto.SummaryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	require.NotEmpty(t, summary.Data.Tags)
}

func TestPlannerHandlerRefilterUnknownResult(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPlannerHandler(nil, newSavedStoreMock())

	payload, _ := json.Marshal(dto.RefilterRequest{
		ResultID: "gone",
		Filter:   dto.FilterSpecRequest{DaysOff: []string{"MONDAY"}},
	})
	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPost, "/planner/refilter", payload)
	handler.Refilter(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
}

func TestCompareHandlerClassifiesPair(t *testing.T) {
	gin.SetMode(gin.TestMode)
	saved := newSavedStoreMock()
	schedule := models.Schedule{Sections: []models.Section{timetableSection("Math", "1", models.Monday, 540, 630)}}
	saved.items["a"] = &models.SavedSchedule{ID: "a", OwnerID: "u1", Label: "mine", Schedule: &schedule}
	saved.items["b"] = &models.SavedSchedule{ID: "b", OwnerID: "u2", Label: "theirs", Schedule: &schedule}

	plannerSvc := service.NewPlannerService(sectionListerMock{}, saved, nil, nil, nil, nil, service.PlannerConfig{})
	handler := NewCompareHandler(service.NewCompareService(plannerSvc, nil, nil))

	payload, _ := json.Marshal(dto.CompareRequest{PrimaryID: "a", OtherID: "b"})
	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPost, "/compare", payload)
	handler.Compare(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data dto.CompareResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "mine", envelope.Data.PrimaryLabel)
	require.Len(t, envelope.Data.Days, 7)
}
