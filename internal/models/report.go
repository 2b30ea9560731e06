package models

import (
	"fmt"
	"time"
)

// ReportStatus captures the lifecycle stage of an RDIC report.
type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "DRAFT"
	ReportStatusInReview  ReportStatus = "IN_REVIEW"
	ReportStatusFinalized ReportStatus = "FINALIZED"
	ReportStatusPublished ReportStatus = "PUBLISHED"
)

// ReportStatuses lists every status in lifecycle order.
var ReportStatuses = []ReportStatus{
	ReportStatusDraft,
	ReportStatusInReview,
	ReportStatusFinalized,
	ReportStatusPublished,
}

// IsValid reports whether s is one of the four lifecycle statuses.
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusDraft, ReportStatusInReview, ReportStatusFinalized, ReportStatusPublished:
		return true
	}
	return false
}

// IsTerminal is true for statuses without outbound transitions.
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusPublished
}

// ReportAction enumerates the workflow actions an actor may request.
type ReportAction string

const (
	ReportActionSubmit         ReportAction = "SUBMIT"
	ReportActionReturnToAuthor ReportAction = "RETURN_TO_AUTHOR"
	ReportActionEdit           ReportAction = "EDIT"
	ReportActionFinalize       ReportAction = "FINALIZE"
	ReportActionPublish        ReportAction = "PUBLISH"
)

// ReportActions lists every workflow action.
var ReportActions = []ReportAction{
	ReportActionSubmit,
	ReportActionReturnToAuthor,
	ReportActionEdit,
	ReportActionFinalize,
	ReportActionPublish,
}

// IsValid reports whether a is a known action.
func (a ReportAction) IsValid() bool {
	switch a {
	case ReportActionSubmit, ReportActionReturnToAuthor, ReportActionEdit, ReportActionFinalize, ReportActionPublish:
		return true
	}
	return false
}

// Report is the per-child periodic pedagogical assessment governed by the
// RDIC workflow. Payloads are opaque JSON documents.
type Report struct {
	ID           string       `db:"id" json:"id"`
	SubjectID    string       `db:"subject_id" json:"subjectId"`
	ScopeID      string       `db:"scope_id" json:"scopeId"`
	Period       string       `db:"period" json:"period"`
	Status       ReportStatus `db:"status" json:"status"`
	DraftPayload Payload      `db:"draft_payload" json:"draftPayload"`
	FinalPayload Payload      `db:"final_payload" json:"finalPayload,omitempty"`
	CreatedBy    string       `db:"created_by" json:"createdBy"`
	ReviewedBy   *string      `db:"reviewed_by" json:"reviewedBy,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	FinalizedAt  *time.Time   `db:"finalized_at" json:"finalizedAt,omitempty"`
	PublishedAt  *time.Time   `db:"published_at" json:"publishedAt,omitempty"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
	Version      int          `db:"version" json:"version"`
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (r Report) Clone() Report {
	out := r
	out.DraftPayload = r.DraftPayload.Clone()
	out.FinalPayload = r.FinalPayload.Clone()
	if r.ReviewedBy != nil {
		v := *r.ReviewedBy
		out.ReviewedBy = &v
	}
	if r.FinalizedAt != nil {
		v := *r.FinalizedAt
		out.FinalizedAt = &v
	}
	if r.PublishedAt != nil {
		v := *r.PublishedAt
		out.PublishedAt = &v
	}
	return out
}

// CheckInvariants verifies the status/payload/timestamp coupling of a record.
func (r Report) CheckInvariants() error {
	if !r.Status.IsValid() {
		return fmt.Errorf("report %s: unknown status %q", r.ID, r.Status)
	}
	finalized := r.Status == ReportStatusFinalized || r.Status == ReportStatusPublished
	if finalized != (r.FinalPayload != nil) {
		return fmt.Errorf("report %s: final payload presence does not match status %s", r.ID, r.Status)
	}
	if finalized != (r.FinalizedAt != nil) {
		return fmt.Errorf("report %s: finalizedAt presence does not match status %s", r.ID, r.Status)
	}
	if (r.Status == ReportStatusPublished) != (r.PublishedAt != nil) {
		return fmt.Errorf("report %s: publishedAt presence does not match status %s", r.ID, r.Status)
	}
	return nil
}

// ReportFilter constrains report queries. Empty slices mean "no restriction".
type ReportFilter struct {
	ScopeIDs  []string
	Statuses  []ReportStatus
	CreatedBy string
	SubjectID string
	Period    string
	Limit     int
	Offset    int
}

// ReportTransition is one entry of a report's audit trail.
type ReportTransition struct {
	ID         string       `db:"id" json:"id"`
	ReportID   string       `db:"report_id" json:"reportId"`
	Action     ReportAction `db:"action" json:"action"`
	FromStatus ReportStatus `db:"from_status" json:"fromStatus"`
	ToStatus   ReportStatus `db:"to_status" json:"toStatus"`
	ActorID    string       `db:"actor_id" json:"actorId"`
	ActorRole  UserRole     `db:"actor_role" json:"actorRole"`
	OccurredAt time.Time    `db:"occurred_at" json:"occurredAt"`
}
