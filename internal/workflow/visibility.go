package workflow

import (
	"fmt"

	"github.com/noah-isme/rdic-api/internal/models"
	appErrors "github.com/noah-isme/rdic-api/pkg/errors"
)

// Visibility is the slice of reports an actor may observe.
type Visibility struct {
	Statuses  []models.ReportStatus
	AllScopes bool
	Scopes    []string
	// OwnerID, when set, limits visibility to reports created by that user.
	OwnerID string
}

// ScopeFor maps an actor to the reports their role may see.
func ScopeFor(actor models.Actor) (Visibility, error) {
	switch actor.Role {
	case models.RoleCentral:
		return Visibility{
			Statuses:  []models.ReportStatus{models.ReportStatusPublished},
			AllScopes: true,
		}, nil
	case models.RoleCoordinator:
		return Visibility{
			Statuses: append([]models.ReportStatus(nil), models.ReportStatuses...),
			Scopes:   append([]string(nil), actor.Scopes...),
		}, nil
	case models.RoleTeacher:
		if actor.UserID == "" {
			return Visibility{}, appErrors.Clone(appErrors.ErrForbidden, "teacher identity is required")
		}
		return Visibility{
			Statuses: []models.ReportStatus{models.ReportStatusDraft, models.ReportStatusInReview},
			Scopes:   append([]string(nil), actor.Scopes...),
			OwnerID:  actor.UserID,
		}, nil
	default:
		return Visibility{}, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %q has no access to reports", actor.Role))
	}
}

// BadgeScopeFor widens a teacher's view to every status of their own
// reports, for listings that expose status only and never content.
func BadgeScopeFor(actor models.Actor) (Visibility, error) {
	v, err := ScopeFor(actor)
	if err != nil {
		return Visibility{}, err
	}
	if actor.Role == models.RoleTeacher {
		v.Statuses = append([]models.ReportStatus(nil), models.ReportStatuses...)
	}
	return v, nil
}

// AllowsStatus reports whether status is inside the visible set.
func (v Visibility) AllowsStatus(status models.ReportStatus) bool {
	for _, s := range v.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// AllowsScope reports whether scopeID is inside the visible scopes.
func (v Visibility) AllowsScope(scopeID string) bool {
	if v.AllScopes {
		return true
	}
	for _, s := range v.Scopes {
		if s == scopeID {
			return true
		}
	}
	return false
}

// Allows reports whether a single record is visible.
func (v Visibility) Allows(report models.Report) bool {
	if !v.AllowsStatus(report.Status) || !v.AllowsScope(report.ScopeID) {
		return false
	}
	if v.OwnerID != "" && report.CreatedBy != v.OwnerID {
		return false
	}
	return true
}

// Narrow intersects a caller filter with the visible set. It returns false
// when the intersection is empty, in which case no query should run.
func (v Visibility) Narrow(filter models.ReportFilter) (models.ReportFilter, bool) {
	out := filter

	if len(filter.Statuses) == 0 {
		out.Statuses = append([]models.ReportStatus(nil), v.Statuses...)
	} else {
		out.Statuses = make([]models.ReportStatus, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			if v.AllowsStatus(s) {
				out.Statuses = append(out.Statuses, s)
			}
		}
	}
	if len(out.Statuses) == 0 {
		return models.ReportFilter{}, false
	}

	if !v.AllScopes {
		if len(filter.ScopeIDs) == 0 {
			out.ScopeIDs = append([]string(nil), v.Scopes...)
		} else {
			out.ScopeIDs = make([]string, 0, len(filter.ScopeIDs))
			for _, s := range filter.ScopeIDs {
				if v.AllowsScope(s) {
					out.ScopeIDs = append(out.ScopeIDs, s)
				}
			}
		}
		if len(out.ScopeIDs) == 0 {
			return models.ReportFilter{}, false
		}
	}

	if v.OwnerID != "" {
		if filter.CreatedBy != "" && filter.CreatedBy != v.OwnerID {
			return models.ReportFilter{}, false
		}
		out.CreatedBy = v.OwnerID
	}
	return out, true
}

// AuthorizeCreate checks whether actor may open a new report in scopeID.
func AuthorizeCreate(actor models.Actor, scopeID string) error {
	switch actor.Role {
	case models.RoleTeacher, models.RoleCoordinator:
		if actor.UserID == "" {
			return appErrors.Clone(appErrors.ErrForbidden, "author identity is required")
		}
		if !actor.HasScope(scopeID) {
			return appErrors.Clone(appErrors.ErrForbidden, "scope is outside your assignments")
		}
		return nil
	case models.RoleCentral:
		return appErrors.Clone(appErrors.ErrForbidden, "central oversight is read-only")
	default:
		return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %q has no access to reports", actor.Role))
	}
}
