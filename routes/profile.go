package routes

import (
	"github.com/gin-gonic/gin"

	userControllers "github.com/socialcoffee/coffee-api/controllers/user"
	"github.com/socialcoffee/coffee-api/middleware"
)

func SetupProfileRoutes(r *gin.Engine, deps Deps) {
	profile := r.Group("/profile", middleware.RequireAuth)
	{
		profile.GET("/bonus", userControllers.BonusBalanceHandler(deps.DB))
	}
}
