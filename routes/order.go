package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/Ptamayo26/ferremas-final-sub001/controllers/order"
	"github.com/Ptamayo26/ferremas-final-sub001/middleware"
)

// SetupOrderRoutes registers "/orders/*". Customers see their own orders; the
// listing and status updates are back-office, behind the API key.
func SetupOrderRoutes(r *gin.Engine, deps Deps) {
	orders := r.Group("/orders")
	{
		orders.GET("/mine", middleware.ValidateToken, orderControllers.GetUserOrdersHandler(deps.DB))
		orders.GET("/:orderID", orderControllers.GetOrderHandler(deps.DB))

		orders.GET("", middleware.ValidateAPIKey, orderControllers.GetAllOrdersHandler(deps.DB))
		orders.PUT("/:orderID/status", middleware.ValidateAPIKey, orderControllers.UpdateOrderStatusHandler(deps.DB))
	}
}
