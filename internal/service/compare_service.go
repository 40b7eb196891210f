package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tintin4303/uniplanner-sub000/internal/dto"
	"github.com/tintin4303/uniplanner-sub000/internal/models"
	"github.com/tintin4303/uniplanner-sub000/internal/planner"
	appErrors "github.com/tintin4303/uniplanner-sub000/pkg/errors"
)

type savedScheduleReader interface {
	GetSaved(ctx context.Context, id string) (*models.SavedSchedule, error)
}

// CompareService classifies the relationship between two saved schedules.
type CompareService struct {
	schedules savedScheduleReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCompareService wires comparison dependencies.
func NewCompareService(schedules savedScheduleReader, validate *validator.Validate, logger *zap.Logger) *CompareService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompareService{schedules: schedules, validator: validate, logger: logger}
}

// Compare walks both schedules day by day from the primary owner's point of
// view. The other schedule may belong to anyone; its id is the share handle.
func (s *CompareService) Compare(ctx context.Context, req dto.CompareRequest) (*dto.CompareResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid compare payload")
	}
	if req.PrimaryID == req.OtherID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot compare a schedule with itself")
	}

	primary, err := s.schedules.GetSaved(ctx, req.PrimaryID)
	if err != nil {
		return nil, err
	}
	other, err := s.schedules.GetSaved(ctx, req.OtherID)
	if err != nil {
		return nil, err
	}
	if primary.Schedule == nil || other.Schedule == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "saved schedule has no payload")
	}

	days := planner.Compare(*primary.Schedule, *other.Schedule)
	return &dto.CompareResponse{
		PrimaryLabel: primary.Label,
		OtherLabel:   other.Label,
		Days:         days,
	}, nil
}
