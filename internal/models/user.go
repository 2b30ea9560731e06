package models

// UserRole represents the closed set of roles understood by the RDIC workflow.
type UserRole string

const (
	// RoleCentral is the central administrative-oversight role (read-only, published reports only).
	RoleCentral UserRole = "CENTRAL"
	// RoleCoordinator is the unit pedagogical coordinator who reviews, finalizes and publishes.
	RoleCoordinator UserRole = "COORDINATOR"
	// RoleTeacher authors reports for children in their classroom.
	RoleTeacher UserRole = "TEACHER"
)

// IsValid reports whether r is one of the known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleCentral, RoleCoordinator, RoleTeacher:
		return true
	}
	return false
}

// Actor is the caller identity supplied by the identity provider.
type Actor struct {
	UserID string
	Role   UserRole
	Scopes []string
}

// HasScope reports whether the actor holds scopeID.
func (a Actor) HasScope(scopeID string) bool {
	for _, s := range a.Scopes {
		if s == scopeID {
			return true
		}
	}
	return false
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
