package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKey enforces the opaque API-key auth model: the configured
// header must carry one of the configured keys verbatim. There is no
// session, no expiry, no per-key scoping — a key is valid or it isn't.
func APIKey(header string, keys []string) gin.HandlerFunc {
	valid := make(map[string]bool, len(keys))
	for _, k := range keys {
		valid[k] = true
	}

	return func(c *gin.Context) {
		key := c.GetHeader(header)
		if key == "" || !valid[key] {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid API key", "type": "unauthorized"},
			})
			return
		}
		c.Next()
	}
}
