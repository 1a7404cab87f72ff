package routes

import (
	"github.com/gin-gonic/gin"

	checkoutControllers "github.com/Ptamayo26/ferremas-final-sub001/controllers/checkout"
	"github.com/Ptamayo26/ferremas-final-sub001/middleware"
)

// SetupCheckoutRoutes registers "/checkout/*".
func SetupCheckoutRoutes(r *gin.Engine, deps Deps) {
	checkoutDeps := checkoutControllers.Deps{
		DB:       deps.DB,
		Redis:    deps.Redis,
		Notifier: deps.Notifier,
		Boundary: deps.Orders,
		Sessions: deps.Sessions,
		Discount: deps.Discount,
		Rates:    deps.Rates,
		Quoters:  deps.Quoters,
	}

	checkoutGroup := r.Group("/checkout")
	checkoutGroup.Use(middleware.OptionalToken)
	{
		checkoutGroup.POST("", checkoutControllers.StartCheckout(checkoutDeps))
		checkoutGroup.GET("/carriers", checkoutControllers.GetCarriers(checkoutDeps))
		checkoutGroup.POST("/quotes", checkoutControllers.GetShippingQuotes(checkoutDeps))

		checkoutGroup.PUT("/:checkoutID/customer", checkoutControllers.SetCustomer(checkoutDeps))
		checkoutGroup.PUT("/:checkoutID/address", checkoutControllers.SetAddress(checkoutDeps))
		checkoutGroup.PUT("/:checkoutID/shipping", checkoutControllers.SetShipping(checkoutDeps))
		checkoutGroup.PUT("/:checkoutID/payment-method", checkoutControllers.SetPaymentMethod(checkoutDeps))
		checkoutGroup.POST("/:checkoutID/discount", checkoutControllers.ApplyDiscount(checkoutDeps))
		checkoutGroup.DELETE("/:checkoutID/discount", checkoutControllers.RemoveDiscount(checkoutDeps))
		checkoutGroup.GET("/:checkoutID/preview", checkoutControllers.Preview(checkoutDeps))
		checkoutGroup.POST("/:checkoutID/submit", checkoutControllers.Submit(checkoutDeps))
	}
}
