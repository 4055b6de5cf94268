package httpkit

import (
	"educare/platform/apperr"
	"educare/platform/logger"

	"github.com/gin-gonic/gin"
)

const (
	errAuthRequired     = "authentication required"
	errInsufficientRole = "insufficient role"
)

// Authorize is the role gate. A missing or unauthenticated identity is
// rejected as unauthorized; an identity whose role is not in allowed is
// forbidden. An empty allowed list admits any authenticated identity.
func Authorize(id Identity, allowed ...string) error {
	if id == nil || !id.IsAuthenticated() {
		return apperr.Unauthorized(errAuthRequired)
	}
	if len(allowed) > 0 && !id.HasRole(allowed...) {
		return apperr.Forbidden(errInsufficientRole)
	}
	return nil
}

// RequireRoles returns middleware that admits only the given roles.
func RequireRoles(log *logger.Logger, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		if err := Authorize(id, roles...); err != nil {
			denied := err.(*apperr.Error)
			if log != nil {
				log.AccessDenied(c.Request.URL.Path, id.Role(), denied.HTTPStatus())
			}
			c.AbortWithStatusJSON(denied.HTTPStatus(), Envelope{Error: denied.Message})
			return
		}
		c.Next()
	}
}
