package middleware

import (
	"net/http"
	"strings"

	"pawcare/models"
	"pawcare/utils"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// AuthMiddleware resolves the acting identity (id + role) from the bearer
// token and stores it on the context. The booking engine trusts this
// identity verbatim. When roles are given, the actor's role must be one of
// them.
func AuthMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		id, role, err := utils.ExtractIdentityFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		if len(roles) > 0 {
			allowed := false
			for _, r := range roles {
				if role == r {
					allowed = true
					break
				}
			}
			if !allowed {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
				return
			}
		}

		c.Set(actorKey, models.Actor{ID: id, Role: role})
		c.Next()
	}
}

// ProviderRoles lists the roles accepted on provider-scoped endpoints.
func ProviderRoles() []string {
	return []string{string(models.ProviderVet), string(models.ProviderGroomer), string(models.ProviderSitter)}
}

// GetActor returns the authenticated actor stored by AuthMiddleware.
func GetActor(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
