package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Headers the collections front end may carry the static token in.
// Authorization wins, then X-API-Key, then the older X-API-Token.
const (
	APITokenHeader = "X-API-Token"
	APIKeyHeader   = "X-API-Key"
)

const bearerPrefix = "Bearer "

// APITokenConfig configures the static token check for the treasury
// endpoints.
type APITokenConfig struct {
	// Required rejects unauthenticated calls when true. When false the
	// middleware lets everything through, which is only acceptable in
	// development.
	Required bool
	// Token is the expected shared secret.
	Token string
}

// APIToken returns a middleware enforcing the static treasury token.
// The comparison is constant time.
func APIToken(cfg APITokenConfig) gin.HandlerFunc {
	expected := []byte(cfg.Token)

	return func(c *gin.Context) {
		if !cfg.Required {
			c.Next()
			return
		}

		provided := extractAPIToken(c)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Missing or invalid API token",
				},
			})
			return
		}

		c.Next()
	}
}

func extractAPIToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, bearerPrefix) {
		return strings.TrimPrefix(auth, bearerPrefix)
	}
	if key := c.GetHeader(APIKeyHeader); key != "" {
		return key
	}
	return c.GetHeader(APITokenHeader)
}
