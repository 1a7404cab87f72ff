package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Ptamayo26/ferremas-final-sub001/cart"
	"github.com/Ptamayo26/ferremas-final-sub001/checkout"
	orderControllers "github.com/Ptamayo26/ferremas-final-sub001/controllers/order"
	"github.com/Ptamayo26/ferremas-final-sub001/discount"
	"github.com/Ptamayo26/ferremas-final-sub001/payment"
	"github.com/Ptamayo26/ferremas-final-sub001/shipping"
)

// Deps is everything the route groups need, built once in main.
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Notifier  *cart.Notifier
	Gateway   *payment.Client
	Confirmer *payment.Confirmer
	Orders    *orderControllers.Service
	Sessions  *checkout.Registry
	Discount  *discount.Resolver
	Rates     shipping.StaticTable
	Quoters   []shipping.RateClient
}

// SetupRoutes is the single entry-point that wires up all route groups.
func SetupRoutes(r *gin.Engine, deps Deps) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, deps)

	// Catalog (public) + user profile (JWT-protected)
	SetupProductRoutes(r, deps)
	SetupUserRoutes(r, deps)

	// Cart and checkout serve both modes behind OptionalToken
	SetupCartRoutes(r, deps)
	SetupCheckoutRoutes(r, deps)

	// Payment return + webhook
	SetupPaymentRoutes(r, deps)

	// Order admin (API-key-protected) + back office
	SetupOrderRoutes(r, deps)
	SetupAdminRoutes(r, deps)
}
