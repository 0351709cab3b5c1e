package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/socialcoffee/coffee-api/cache"
	orderControllers "github.com/socialcoffee/coffee-api/controllers/order"
	"github.com/socialcoffee/coffee-api/ledger"
	"github.com/socialcoffee/coffee-api/menu"
	"github.com/socialcoffee/coffee-api/reconcile"
)

// Deps bundles the constructed services the route groups wire handlers to.
type Deps struct {
	DB          *gorm.DB
	Ledger      *ledger.Ledger
	Coordinator *reconcile.Coordinator
	Menu        *menu.Service
	MenuCache   *cache.MenuCache
	Hub         *orderControllers.Hub
}

// SetupRoutes is the single entry point that wires up all route groups.
func SetupRoutes(r *gin.Engine, deps Deps) {
	SetupMenuRoutes(r, deps)
	SetupOrderRoutes(r, deps)
	SetupAdminRoutes(r, deps)
	SetupProfileRoutes(r, deps)
}
