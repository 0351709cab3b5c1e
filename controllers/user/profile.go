package userControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/socialcoffee/coffee-api/middleware"
	"github.com/socialcoffee/coffee-api/models"
)

// BonusBalanceHandler returns the authenticated user's loyalty balance.
func BonusBalanceHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		if userID == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var user models.User
		if err := db.First(&user, *userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bonus_points": user.BonusPoints})
	}
}
