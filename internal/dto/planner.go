package dto

import "github.com/tintin4303/uniplanner-sub000/internal/models"

// FilterSpecRequest is the wire form of a FilterSpec: clock bounds come in as
// HH:MM strings and are parsed at the service edge.
type FilterSpecRequest struct {
	DaysOff        []string `json:"daysOff" validate:"omitempty,dive,required"`
	StartNotBefore *string  `json:"startNotBefore" validate:"omitempty"`
	EndNotAfter    *string  `json:"endNotAfter" validate:"omitempty"`
	MustShareDay   []string `json:"mustShareDay" validate:"omitempty,dive,required"`
}

// Empty reports whether no constraint axis was supplied.
func (f *FilterSpecRequest) Empty() bool {
	if f == nil {
		return true
	}
	return len(f.DaysOff) == 0 && f.StartNotBefore == nil && f.EndNotAfter == nil && len(f.MustShareDay) == 0
}

// GenerateRequest asks the planner to enumerate conflict-free schedules from
// the caller's active sections.
type GenerateRequest struct {
	Filter *FilterSpecRequest `json:"filter" validate:"omitempty"`
}

// GeneratedSchedule is one enumerated combination plus derived annotations.
type GeneratedSchedule struct {
	Index    int                  `json:"index"`
	Sections []models.Section     `json:"sections"`
	Credits  int                  `json:"credits"`
	Tags     []models.ScheduleTag `json:"tags"`
}

// GenerateResponse returns the enumerated result set. ResultID references the
// retained set for follow-up refilter/save calls until it expires.
type GenerateResponse struct {
	ResultID  string              `json:"resultId"`
	Total     int                 `json:"total"`
	Capped    bool                `json:"capped"`
	Schedules []GeneratedSchedule `json:"schedules"`
}

// RefilterRequest re-applies a filter to a retained result set.
type RefilterRequest struct {
	ResultID string            `json:"resultId" validate:"required"`
	Filter   FilterSpecRequest `json:"filter" validate:"required"`
}

// SaveScheduleRequest persists one schedule out of a retained result set.
type SaveScheduleRequest struct {
	ResultID string `json:"resultId" validate:"required"`
	Index    int    `json:"index" validate:"min=0"`
	Label    string `json:"label" validate:"required,max=120"`
}
