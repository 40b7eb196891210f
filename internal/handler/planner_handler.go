package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tintin4303/uniplanner-sub000/internal/dto"
	"github.com/tintin4303/uniplanner-sub000/internal/service"
	appErrors "github.com/tintin4303/uniplanner-sub000/pkg/errors"
	"github.com/tintin4303/uniplanner-sub000/pkg/response"
)

// PlannerHandler handles schedule generation and saved schedule endpoints.
type PlannerHandler struct {
	service *service.PlannerService
}

// NewPlannerHandler constructs a planner handler.
func NewPlannerHandler(svc *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{service: svc}
}

// Generate godoc
// @Summary Generate conflict-free schedules
// @Description Enumerates combinations of the caller's active sections, one section per subject
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planner/generate [post]
func (h *PlannerHandler) Generate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.GenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
			return
		}
	}

	res, err := h.service.Generate(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Refilter godoc
// @Summary Re-filter a retained result set
// @Description Applies a new filter to a previously generated result set without regenerating
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.RefilterRequest true "Refilter payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /planner/refilter [post]
func (h *PlannerHandler) Refilter(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.RefilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid refilter payload"))
		return
	}

	res, err := h.service.Refilter(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Save godoc
// @Summary Save one generated schedule
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.SaveScheduleRequest true "Save payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /planner/save [post]
func (h *PlannerHandler) Save(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SaveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}

	saved, err := h.service.Save(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, saved)
}

// ListSaved godoc
// @Summary List saved schedules
// @Tags Planner
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /planner/saved [get]
func (h *PlannerHandler) ListSaved(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	saved, err := h.service.ListSaved(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved, nil)
}

// GetSaved godoc
// @Summary Get a saved schedule by id
// @Description Saved schedules are shareable, so any authenticated user may fetch by id
// @Tags Planner
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /planner/saved/{id} [get]
func (h *PlannerHandler) GetSaved(c *gin.Context) {
	saved, err := h.service.GetSaved(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved, nil)
}

// DeleteSaved godoc
// @Summary Delete a saved schedule
// @Tags Planner
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /planner/saved/{id} [delete]
func (h *PlannerHandler) DeleteSaved(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteSaved(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Summary godoc
// @Summary Derive tags for a saved schedule
// @Description Reports free days, late starts, early finishes and lunch availability
// @Tags Planner
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /planner/saved/{id}/summary [get]
func (h *PlannerHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
