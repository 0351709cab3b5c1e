package routes

import (
	"github.com/gin-gonic/gin"

	deliveryControllers "github.com/socialcoffee/coffee-api/controllers/delivery"
	menuControllers "github.com/socialcoffee/coffee-api/controllers/menu"
)

func SetupMenuRoutes(r *gin.Engine, deps Deps) {
	r.GET("/menu", menuControllers.MenuHandler(deps.Menu))
	r.GET("/delivery-zones", deliveryControllers.GetDeliveryZonesHandler(deps.DB))
	r.GET("/pickup-locations", deliveryControllers.GetPickupLocationsHandler(deps.DB))
}
