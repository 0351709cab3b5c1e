package routes

import (
	"github.com/gin-gonic/gin"

	adminControllers "github.com/socialcoffee/coffee-api/controllers/admin"
	"github.com/socialcoffee/coffee-api/middleware"
)

func SetupAdminRoutes(r *gin.Engine, deps Deps) {
	admin := r.Group("/admin", middleware.RequireAdminKey)
	{
		admin.GET("/dashboard", adminControllers.DashboardHandler(deps.DB))

		admin.GET("/orders/active", adminControllers.ActiveOrdersHandler(deps.DB))
		admin.GET("/orders/closed", adminControllers.ClosedOrdersHandler(deps.DB))
		admin.GET("/orders/export", adminControllers.ExportOrdersHandler(deps.DB))
		admin.GET("/orders/ws", deps.Hub.Handler())
		admin.PATCH("/orders/:orderID/complete", adminControllers.CompleteOrderHandler(deps.Ledger))
		admin.PATCH("/orders/:orderID/cancel", adminControllers.CancelOrderHandler(deps.Ledger))

		admin.GET("/categories", adminControllers.ListCategoriesHandler(deps.DB))
		admin.POST("/categories", adminControllers.CreateCategoryHandler(deps.DB, deps.MenuCache))
		admin.PUT("/categories/:categoryID", adminControllers.UpdateCategoryHandler(deps.DB, deps.MenuCache))
		admin.DELETE("/categories/:categoryID", adminControllers.DeleteCategoryHandler(deps.DB, deps.MenuCache))

		admin.GET("/products", adminControllers.ListProductsHandler(deps.DB))
		admin.POST("/products", adminControllers.CreateProductHandler(deps.DB, deps.MenuCache))
		admin.PUT("/products/:productID", adminControllers.UpdateProductHandler(deps.DB, deps.MenuCache))
		admin.DELETE("/products/:productID", adminControllers.DeleteProductHandler(deps.DB, deps.MenuCache))

		admin.GET("/option-groups", adminControllers.ListOptionGroupsHandler(deps.DB))
		admin.POST("/option-groups", adminControllers.CreateOptionGroupHandler(deps.DB, deps.MenuCache))
		admin.PUT("/option-groups/:groupID", adminControllers.UpdateOptionGroupHandler(deps.DB, deps.MenuCache))
		admin.DELETE("/option-groups/:groupID", adminControllers.DeleteOptionGroupHandler(deps.DB, deps.MenuCache))

		admin.POST("/options", adminControllers.CreateOptionHandler(deps.DB, deps.MenuCache))
		admin.PUT("/options/:optionID", adminControllers.UpdateOptionHandler(deps.DB, deps.MenuCache))
		admin.DELETE("/options/:optionID", adminControllers.DeleteOptionHandler(deps.DB, deps.MenuCache))
	}
}
