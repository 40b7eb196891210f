package dto

import "github.com/tintin4303/uniplanner-sub000/internal/models"

// CompareRequest pairs two saved schedules for relationship classification.
// OtherID may belong to a different owner (a friend's shared schedule).
type CompareRequest struct {
	PrimaryID string `json:"primaryId" validate:"required"`
	OtherID   string `json:"otherId" validate:"required"`
}

// CompareResponse carries per-day classified session pairs.
type CompareResponse struct {
	PrimaryLabel string                 `json:"primaryLabel"`
	OtherLabel   string                 `json:"otherLabel"`
	Days         []models.DayComparison `json:"days"`
}

// SummaryResponse carries derived tags for one saved schedule.
type SummaryResponse struct {
	ScheduleID string               `json:"scheduleId"`
	Tags       []models.ScheduleTag `json:"tags"`
}
