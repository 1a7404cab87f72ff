package routes

import (
	"github.com/gin-gonic/gin"

	productcontroller "github.com/Ptamayo26/ferremas-final-sub001/controllers/product"
)

// SetupProductRoutes registers the public catalog endpoints.
func SetupProductRoutes(r *gin.Engine, deps Deps) {
	products := r.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(deps.DB))
		products.GET("/:id", productcontroller.GetProductByID(deps.DB))
	}

	r.GET("/categories", productcontroller.GetCategories(deps.DB))
}
