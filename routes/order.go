package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/socialcoffee/coffee-api/controllers/order"
	"github.com/socialcoffee/coffee-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, deps Deps) {
	orders := r.Group("/orders")
	{
		// Checkout: anonymous allowed, a valid token attributes the order.
		orders.POST("", middleware.OptionalAuth, orderControllers.CreateOrderHandler(deps.Ledger, deps.Hub))

		// Payment status poll; may trigger one reconciliation.
		orders.GET("/status/:orderID", orderControllers.OrderStatusHandler(deps.Coordinator))

		// Full order detail for the owner or an admin.
		orders.GET("/:orderID", middleware.OptionalAuth, orderControllers.GetOrderHandler(deps.DB, deps.Ledger))
	}
}
