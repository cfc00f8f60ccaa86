package middleware

import (
	"net/http"

	"gamemarket-api-io/api/internal/auth"
	"gamemarket-api-io/api/pkg/permissions"
	"gamemarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Require rejects the request unless policy allows action for the current
// caller. Object level checks are left to the handlers.
func Require(policy permissions.Policy, action permissions.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := permissions.Check(policy, auth.CurrentActor(c), action, permissions.Resource{})
		if err != nil {
			util.HandleError(c, PermissionStatus(err), err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuth restricts access to logged in callers.
func RequireAuth() gin.HandlerFunc {
	return Require(permissions.Authenticated, permissions.Retrieve)
}

// AdminOnly restricts access to staff users.
func AdminOnly() gin.HandlerFunc {
	return Require(permissions.AdminUser, permissions.List)
}

// PermissionStatus maps a policy verdict to its HTTP status.
func PermissionStatus(err error) int {
	if errors.Is(err, permissions.ErrNotAuthenticated) {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}
