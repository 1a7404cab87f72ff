package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/Ptamayo26/ferremas-final-sub001/controllers/cart"
	"github.com/Ptamayo26/ferremas-final-sub001/middleware"
)

// SetupCartRoutes registers "/cart/*". The same handlers serve both modes:
// OptionalToken sets user_id for logged-in customers, anonymous requests pass
// ?session_id= instead.
func SetupCartRoutes(r *gin.Engine, deps Deps) {
	cartDeps := cartControllers.Deps{DB: deps.DB, Redis: deps.Redis, Notifier: deps.Notifier}

	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.OptionalToken)
	{
		cartGroup.GET("", cartControllers.GetCart(cartDeps))
		cartGroup.GET("/summary", cartControllers.GetCartSummary(cartDeps))
		cartGroup.POST("", cartControllers.AddCartItem(cartDeps))
		cartGroup.PUT("/:line_id", cartControllers.UpdateCartItemQuantity(cartDeps))
		cartGroup.DELETE("/:line_id", cartControllers.DeleteCartItem(cartDeps))
		cartGroup.DELETE("", cartControllers.ClearCart(cartDeps))
	}

	// Cross-view refresh for the anonymous cart.
	r.GET("/ws/cart", cartControllers.CartWebSocketHandler(deps.Notifier))
}
