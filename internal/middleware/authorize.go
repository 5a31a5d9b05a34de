package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventdesk/internal/models"
)

// RequireRoles gates a route group on the signed-in user's stored
// role. It must run after Auth.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := UserFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if _, allowed := roleSet[user.Role]; !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "forbidden",
				"role":  string(user.Role),
			})
			return
		}

		c.Next()
	}
}
