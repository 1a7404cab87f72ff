package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Ptamayo26/ferremas-final-sub001/auth"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, deps Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/guest", auth.CreateGuestUser(deps.DB))
	}
}
