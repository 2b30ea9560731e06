// Package workflow holds the RDIC report state machine and the role-based
// visibility rules. Everything here is pure: no storage, no clock.
package workflow

import (
	"fmt"
	"time"

	"github.com/noah-isme/rdic-api/internal/models"
	appErrors "github.com/noah-isme/rdic-api/pkg/errors"
)

// transitions is the single source of truth for legal lifecycle moves:
// action -> from status -> to status.
var transitions = map[models.ReportAction]map[models.ReportStatus]models.ReportStatus{
	models.ReportActionSubmit: {
		models.ReportStatusDraft: models.ReportStatusInReview,
	},
	models.ReportActionReturnToAuthor: {
		models.ReportStatusInReview: models.ReportStatusDraft,
	},
	models.ReportActionEdit: {
		models.ReportStatusDraft:    models.ReportStatusDraft,
		models.ReportStatusInReview: models.ReportStatusInReview,
	},
	// FINALIZE is reachable from DRAFT as well, letting a coordinator skip SUBMIT.
	models.ReportActionFinalize: {
		models.ReportStatusDraft:    models.ReportStatusFinalized,
		models.ReportStatusInReview: models.ReportStatusFinalized,
	},
	models.ReportActionPublish: {
		models.ReportStatusFinalized: models.ReportStatusPublished,
	},
}

// requiredRoles lists the roles allowed to request an action.
func requiredRoles(action models.ReportAction) []models.UserRole {
	switch action {
	case models.ReportActionSubmit, models.ReportActionEdit:
		return []models.UserRole{models.RoleTeacher, models.RoleCoordinator}
	case models.ReportActionReturnToAuthor, models.ReportActionFinalize, models.ReportActionPublish:
		return []models.UserRole{models.RoleCoordinator}
	default:
		return nil
	}
}

// Command is a request to move a report through the workflow.
type Command struct {
	Action  models.ReportAction
	Actor   models.Actor
	Payload models.Payload
}

// Authorize checks the actor's role against the action's requirement,
// independent of the report's current status.
func Authorize(role models.UserRole, action models.ReportAction) error {
	if !action.IsValid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported action %q", action))
	}
	for _, allowed := range requiredRoles(action) {
		if allowed == role {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %s may not %s reports", role, describe(action)))
}

// Decide resolves the status reached by applying action in status.
func Decide(status models.ReportStatus, action models.ReportAction) (models.ReportStatus, error) {
	to, ok := transitions[action][status]
	if !ok {
		return "", appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot %s a report in status %s", describe(action), status))
	}
	return to, nil
}

// AllowedActions returns the actions role may fire from status, in table order.
func AllowedActions(role models.UserRole, status models.ReportStatus) []models.ReportAction {
	actions := make([]models.ReportAction, 0, len(models.ReportActions))
	for _, action := range models.ReportActions {
		if Authorize(role, action) != nil {
			continue
		}
		if _, err := Decide(status, action); err != nil {
			continue
		}
		actions = append(actions, action)
	}
	return actions
}

// Apply runs cmd against report and returns the updated record together with
// the audit entry describing the move. The input report is never modified.
func Apply(report models.Report, cmd Command, now time.Time) (models.Report, models.ReportTransition, error) {
	if err := Authorize(cmd.Actor.Role, cmd.Action); err != nil {
		return report, models.ReportTransition{}, err
	}
	to, err := Decide(report.Status, cmd.Action)
	if err != nil {
		return report, models.ReportTransition{}, err
	}
	if err := checkPayload(cmd); err != nil {
		return report, models.ReportTransition{}, err
	}

	next := report.Clone()
	now = now.UTC()

	switch cmd.Action {
	case models.ReportActionEdit:
		next.DraftPayload = cmd.Payload.Clone()
	case models.ReportActionFinalize:
		if cmd.Payload != nil {
			next.DraftPayload = cmd.Payload.Clone()
		}
		if next.DraftPayload == nil {
			return report, models.ReportTransition{}, appErrors.Clone(appErrors.ErrValidation, "report has no draft content to finalize")
		}
		reviewer := cmd.Actor.UserID
		next.FinalPayload = next.DraftPayload.Clone()
		next.FinalizedAt = &now
		next.ReviewedBy = &reviewer
	case models.ReportActionPublish:
		next.PublishedAt = &now
	}
	next.Status = to
	next.UpdatedAt = now

	entry := models.ReportTransition{
		ReportID:   report.ID,
		Action:     cmd.Action,
		FromStatus: report.Status,
		ToStatus:   to,
		ActorID:    cmd.Actor.UserID,
		ActorRole:  cmd.Actor.Role,
		OccurredAt: now,
	}
	return next, entry, nil
}

func checkPayload(cmd Command) error {
	switch cmd.Action {
	case models.ReportActionEdit:
		if cmd.Payload == nil {
			return appErrors.Clone(appErrors.ErrValidation, "payload is required to edit a report")
		}
		if !cmd.Payload.IsObject() {
			return appErrors.Clone(appErrors.ErrValidation, "payload must be a JSON object")
		}
	case models.ReportActionFinalize:
		if cmd.Payload != nil && !cmd.Payload.IsObject() {
			return appErrors.Clone(appErrors.ErrValidation, "payload must be a JSON object")
		}
	default:
		if cmd.Payload != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s does not accept a payload", cmd.Action))
		}
	}
	return nil
}

func describe(action models.ReportAction) string {
	switch action {
	case models.ReportActionSubmit:
		return "submit"
	case models.ReportActionReturnToAuthor:
		return "return"
	case models.ReportActionEdit:
		return "edit"
	case models.ReportActionFinalize:
		return "finalize"
	case models.ReportActionPublish:
		return "publish"
	default:
		return string(action)
	}
}
