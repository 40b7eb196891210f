package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tintin4303/uniplanner-sub000/internal/dto"
	"github.com/tintin4303/uniplanner-sub000/internal/service"
	appErrors "github.com/tintin4303/uniplanner-sub000/pkg/errors"
	"github.com/tintin4303/uniplanner-sub000/pkg/response"
)

// CompareHandler handles pairwise schedule comparison endpoints.
type CompareHandler struct {
	service *service.CompareService
}

// NewCompareHandler constructs a compare handler.
func NewCompareHandler(svc *service.CompareService) *CompareHandler {
	return &CompareHandler{service: svc}
}

// Compare godoc
// @Summary Compare two saved schedules
// @Description Classifies each weekday of the pair as matching, conflicting or disjoint
// @Tags Compare
// @Accept json
// @Produce json
// @Param payload body dto.CompareRequest true "Comparison payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /compare [post]
func (h *CompareHandler) Compare(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comparison payload"))
		return
	}

	res, err := h.service.Compare(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
