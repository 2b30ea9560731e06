package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rdic-api/internal/models"
	appErrors "github.com/noah-isme/rdic-api/pkg/errors"
	"github.com/noah-isme/rdic-api/pkg/response"
)

// RequireRoles lets the request through only when the caller's claims carry
// one of roles. Coordinators must also hold at least one scope.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		claims, ok := value.(*models.JWTClaims)
		if !exists || !ok || claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role not permitted on this route"))
			c.Abort()
			return
		}

		if claims.Role == models.RoleCoordinator && len(claims.Scopes) == 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "coordinator token carries no scopes"))
			c.Abort()
			return
		}

		c.Next()
	}
}
