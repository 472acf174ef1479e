package dto

import (
	"time"

	"github.com/noah-isme/sma-seating-api/internal/models"
)

// ExportRequest asks for a seating chart rendering.
type ExportRequest struct {
	Format models.ExportFormat `json:"format" validate:"required,oneof=csv pdf xlsx"`
}

// ExportJobResponse is returned when a job is queued or polled.
type ExportJobResponse struct {
	ID          string              `json:"id"`
	ClassroomID string              `json:"classroomId"`
	Format      models.ExportFormat `json:"format"`
	Status      models.ExportStatus `json:"status"`
	DownloadURL *string             `json:"downloadUrl,omitempty"`
	ExpiresAt   *time.Time          `json:"expiresAt,omitempty"`
	Error       *string             `json:"error,omitempty"`
}
