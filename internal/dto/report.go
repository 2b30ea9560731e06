package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/rdic-api/internal/models"
)

// CreateReportRequest opens a new draft report for a child.
type CreateReportRequest struct {
	SubjectID    string          `json:"subjectId" validate:"required,max=64"`
	ScopeID      string          `json:"scopeId" validate:"required,max=64"`
	Period       string          `json:"period" validate:"required,max=32"`
	DraftPayload json.RawMessage `json:"draftPayload,omitempty"`
}

// ApplyActionRequest moves a report through the workflow. Version, when set,
// must match the stored version or the request is rejected as a conflict.
type ApplyActionRequest struct {
	Action  models.ReportAction `json:"action" validate:"required,max=32"`
	Payload json.RawMessage     `json:"payload,omitempty"`
	Version *int                `json:"version,omitempty" validate:"omitempty,min=1"`
}

// ReportQuery mirrors supported listing filters.
type ReportQuery struct {
	ScopeIDs  []string
	Statuses  []models.ReportStatus
	SubjectID string
	Period    string
	Page      int
	PageSize  int
}

// ReportView is a report as returned to a caller, with the actions that
// caller may fire next.
type ReportView struct {
	models.Report
	AllowedActions []models.ReportAction `json:"allowedActions"`
}

// ReportSummary is the status badge shown to authors; it never carries content.
type ReportSummary struct {
	ID        string              `json:"id"`
	SubjectID string              `json:"subjectId"`
	ScopeID   string              `json:"scopeId"`
	Period    string              `json:"period"`
	Status    models.ReportStatus `json:"status"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// ReportHistory is the audit trail of a report.
type ReportHistory struct {
	ReportID    string                    `json:"reportId"`
	Transitions []models.ReportTransition `json:"transitions"`
}
