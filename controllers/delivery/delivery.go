package deliveryControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/socialcoffee/coffee-api/models"
)

// GetDeliveryZonesHandler lists active delivery zones for the map picker.
func GetDeliveryZonesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var zones []models.DeliveryZone
		if err := db.Where("is_active = ?", true).Find(&zones).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load delivery zones"})
			return
		}
		c.JSON(http.StatusOK, zones)
	}
}

// GetPickupLocationsHandler lists active pickup locations in display order.
func GetPickupLocationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var locations []models.PickupLocation
		if err := db.Where("is_active = ?", true).
			Order("display_order").
			Find(&locations).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load pickup locations"})
			return
		}
		c.JSON(http.StatusOK, locations)
	}
}
