package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Ptamayo26/ferremas-final-sub001/cart"
	"github.com/Ptamayo26/ferremas-final-sub001/checkout"
	orderControllers "github.com/Ptamayo26/ferremas-final-sub001/controllers/order"
	"github.com/Ptamayo26/ferremas-final-sub001/discount"
	"github.com/Ptamayo26/ferremas-final-sub001/models"
	"github.com/Ptamayo26/ferremas-final-sub001/payment"
	"github.com/Ptamayo26/ferremas-final-sub001/routes"
	"github.com/Ptamayo26/ferremas-final-sub001/shipping"
)

func main() {
	log.Println("✅ Starting application...")

	// Load environment variables
	_ = godotenv.Load()

	db := initDatabase()

	if err := db.AutoMigrate(
		&models.User{},
		&models.GuestUser{},
		&models.Product{},
		&models.Category{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentConfirmation{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	rdb := initRedis()
	notifier := cart.NewNotifier()
	gateway := payment.NewClient(nil)

	resolver, err := discount.NewResolverFromEnv()
	if err != nil {
		log.Fatalf("❌ Discount resolver setup failed: %v", err)
	}

	rates := shipping.DefaultTable()
	carriers := make([]string, 0, len(rates))
	for carrier := range rates {
		carriers = append(carriers, carrier)
	}

	deps := routes.Deps{
		DB:        db,
		Redis:     rdb,
		Notifier:  notifier,
		Gateway:   gateway,
		Confirmer: payment.NewConfirmer(db, gateway),
		Orders:    orderControllers.NewService(db, gateway),
		Sessions:  checkout.NewRegistry(),
		Discount:  resolver,
		Rates:     rates,
		Quoters:   shipping.RateClientsFromEnv(carriers...),
	}

	// Gin setup
	r := gin.Default()

	// Excel imports can be a few MB
	r.MaxMultipartMemory = 32 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, deps)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

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

// initRedis connects the anonymous cart store.
func initRedis() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	return rdb
}
