package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tintin4303/uniplanner-sub000/internal/dto"
	"github.com/tintin4303/uniplanner-sub000/internal/models"
	"github.com/tintin4303/uniplanner-sub000/internal/planner"
	appErrors "github.com/tintin4303/uniplanner-sub000/pkg/errors"
)

// ApplyBatch executes structured mutation ops in order and stops at the first
// failure, reporting how many ops were applied. Callers never pass free text
// here; an upstream interpreter has already reduced input to these ops.
func (s *SectionService) ApplyBatch(ctx context.Context, ownerID string, req dto.BatchMutationRequest) (*dto.MutationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mutation batch")
	}

	result := &dto.MutationResult{}
	for i, op := range req.Ops {
		filter, err := s.applyOne(ctx, ownerID, op)
		if err != nil {
			typed := appErrors.FromError(err)
			return result, appErrors.Wrap(err, typed.Code, typed.Status, fmt.Sprintf("ops[%d] (%s) failed", i, op.Op))
		}
		if filter != nil {
			result.Filter = filter
		}
		result.Applied++
	}
	return result, nil
}

func (s *SectionService) applyOne(ctx context.Context, ownerID string, op dto.MutationOp) (*dto.FilterSpecRequest, error) {
	switch op.Op {
	case dto.MutationAddSection:
		var payload dto.CreateSectionRequest
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid add-section payload")
		}
		_, err := s.Create(ctx, ownerID, payload)
		return nil, err

	case dto.MutationUpdateSubject:
		var payload dto.UpdateSubjectPayload
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid update-subject payload")
		}
		if payload.SectionID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "update-subject requires sectionId")
		}
		_, err := s.Update(ctx, payload.SectionID, ownerID, payload.Changes)
		return nil, err

	case dto.MutationRemoveSubject:
		var payload dto.RemoveSubjectPayload
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid remove-subject payload")
		}
		if payload.Name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "remove-subject requires a subject name")
		}
		removed, err := s.repo.DeleteBySubject(ctx, ownerID, payload.Name)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove subject")
		}
		if removed == 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no sections found for subject %q", payload.Name))
		}
		s.invalidatePlannerCache(ctx, ownerID)
		return nil, nil

	case dto.MutationSetFilter:
		var payload dto.FilterSpecRequest
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid set-filter payload")
		}
		// Parse eagerly so malformed clocks fail the batch here, not at the
		// next generate call.
		if _, err := parseFilterSpec(&payload); err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, filterKey(ownerID), payload, 0); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store filter")
			}
		}
		s.invalidatePlannerCache(ctx, ownerID)
		return &payload, nil

	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported op %q", op.Op))
	}
}

// parseFilterSpec converts the wire filter to model form, parsing HH:MM
// bounds and day names.
func parseFilterSpec(req *dto.FilterSpecRequest) (*models.FilterSpec, error) {
	if req.Empty() {
		return nil, nil
	}
	spec := &models.FilterSpec{MustShareDay: req.MustShareDay}
	for _, raw := range req.DaysOff {
		day := models.ParseWeekday(raw)
		if day == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q in daysOff", raw))
		}
		spec.DaysOff = append(spec.DaysOff, day)
	}
	if req.StartNotBefore != nil {
		minutes, err := planner.ParseClock(*req.StartNotBefore)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("bad startNotBefore %q", *req.StartNotBefore))
		}
		spec.StartNotBefore = &minutes
	}
	if req.EndNotAfter != nil {
		minutes, err := planner.ParseClock(*req.EndNotAfter)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("bad endNotAfter %q", *req.EndNotAfter))
		}
		spec.EndNotAfter = &minutes
	}
	return spec, nil
}
