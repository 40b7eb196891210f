package dto

import (
	"time"

	"github.com/tintin4303/uniplanner-sub000/internal/models"
)

// ExportRequest queues rendering of a saved schedule into a file format.
type ExportRequest struct {
	ScheduleID string `json:"scheduleId" validate:"required"`
	Format     string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse reports job state and, once finished, a signed download URL.
type ExportJobResponse struct {
	ID           string              `json:"id"`
	Status       models.ExportStatus `json:"status"`
	Format       models.ExportFormat `json:"format"`
	DownloadURL  *string             `json:"downloadUrl,omitempty"`
	ExpiresAt    *time.Time          `json:"expiresAt,omitempty"`
	ErrorMessage *string             `json:"errorMessage,omitempty"`
}
