package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

type TokenVerifier interface {
	Verify(token string) (domain.Actor, error)
}

// AuthMiddleware resolves the bearer token into the request's actor.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		actor, err := verifier.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func actorFrom(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	if !ok || actor.ID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return domain.Actor{}, false
	}
	return actor, true
}
