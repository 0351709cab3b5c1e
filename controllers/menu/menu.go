package menuControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/socialcoffee/coffee-api/menu"
)

// MenuHandler serves the assembled menu tree (cached).
func MenuHandler(svc *menu.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		response, err := svc.Menu(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load menu"})
			return
		}
		c.JSON(http.StatusOK, response)
	}
}
