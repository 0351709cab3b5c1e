package middleware

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// RequireAdminKey guards the admin surface with the shared X-API-KEY header.
func RequireAdminKey(c *gin.Context) {
	apiKey := c.GetHeader("X-API-KEY")
	if apiKey == "" || apiKey != os.Getenv("ADMIN_API_KEY") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
		c.Abort()
		return
	}
	c.Next()
}

// IsAdminRequest reports whether the request carries the admin key, for
// endpoints that accept either the owner's token or the admin key.
func IsAdminRequest(c *gin.Context) bool {
	apiKey := c.GetHeader("X-API-KEY")
	return apiKey != "" && apiKey == os.Getenv("ADMIN_API_KEY")
}
