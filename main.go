package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/socialcoffee/coffee-api/cache"
	orderControllers "github.com/socialcoffee/coffee-api/controllers/order"
	"github.com/socialcoffee/coffee-api/ledger"
	"github.com/socialcoffee/coffee-api/menu"
	"github.com/socialcoffee/coffee-api/metrics"
	"github.com/socialcoffee/coffee-api/models"
	"github.com/socialcoffee/coffee-api/payments"
	"github.com/socialcoffee/coffee-api/reconcile"
	"github.com/socialcoffee/coffee-api/routes"
)

func main() {
	log.Println("✅ Starting application...")

	// Load environment variables
	_ = godotenv.Load()

	// Init DB
	db := initDatabase()

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.OptionGroup{},
		&models.Option{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemOption{},
		&models.DeliveryZone{},
		&models.PickupLocation{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	// Menu cache: Redis when configured, in-process otherwise
	store := initCacheStore()
	defer store.Close()
	menuCache := cache.NewMenuCache(store)

	// Services
	gateway := payments.NewKaspiGatewayFromEnv()
	orderLedger := ledger.New(db, gateway)
	hub := orderControllers.NewHub()
	coordinator := reconcile.New(orderLedger, gateway, hub)
	menuService := menu.NewService(db, menuCache)

	// Gin setup
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	routes.SetupRoutes(r, routes.Deps{
		DB:          db,
		Ledger:      orderLedger,
		Coordinator: coordinator,
		Menu:        menuService,
		MenuCache:   menuCache,
		Hub:         hub,
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server running on port %s...", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase() *gorm.DB {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			log.Fatalf("❌ DB connection failed: %v", err)
		}
		return db
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ Failed to connect DB: %v", err)
	}
	return db
}

// initCacheStore connects to Redis when REDIS_URL is set; otherwise menu
// caching runs in-process (fine for a single instance, lost on restart).
func initCacheStore() cache.Store {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		log.Println("⚠️ REDIS_URL not set, using in-process menu cache")
		return cache.NewMemoryStore()
	}
	store, err := cache.NewRedisStore(redisURL)
	if err != nil {
		log.Printf("⚠️ Redis connection failed (%v), falling back to in-process cache", err)
		return cache.NewMemoryStore()
	}
	log.Println("✅ Connected to Redis")
	return store
}
