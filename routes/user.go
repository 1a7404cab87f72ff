package routes

import (
	"github.com/gin-gonic/gin"

	userControllers "github.com/Ptamayo26/ferremas-final-sub001/controllers/user"
	"github.com/Ptamayo26/ferremas-final-sub001/middleware"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, deps Deps) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		userGroup.GET("", userControllers.GetUser(deps.DB))
		userGroup.PUT("", userControllers.UpdateUser(deps.DB))
	}
}
