package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/apperr"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/auth"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/guard"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/logs"
)

// TokenParser vérifie un jeton d'accès.
type TokenParser interface {
	Parse(tokenStr string) (*auth.Claims, error)
}

func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperr.Respond(c, apperr.New(apperr.Unauthorized))
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			logs.LogJSON("WARN", "Invalid access token", map[string]interface{}{
				"route": c.FullPath(),
				"error": err.Error(),
			})
			apperr.Respond(c, apperr.Wrap(apperr.Unauthorized, err))
			return
		}

		c.Set(guard.IdentityKey, claims.Subject)
		c.Set("access_token", tokenStr)
		c.Next()
	}
}
