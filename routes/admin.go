package routes

import (
	"github.com/gin-gonic/gin"

	productcontroller "github.com/Ptamayo26/ferremas-final-sub001/controllers/product"
	"github.com/Ptamayo26/ferremas-final-sub001/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-key
// middleware.
func SetupAdminRoutes(r *gin.Engine, deps Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey)
	{
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productcontroller.CreateProduct(deps.DB))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(deps.DB))
			productAdmin.GET("", productcontroller.GetProducts(deps.DB))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(deps.DB))
			productAdmin.POST("/import-excel", productcontroller.ImportProductsFromExcel(deps.DB))
			productAdmin.GET("/export-excel", productcontroller.ExportProductsToExcel(deps.DB))
		}

		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", productcontroller.CreateCategory(deps.DB))
			categoryAdmin.GET("", productcontroller.GetCategories(deps.DB))
			categoryAdmin.DELETE("/:id", productcontroller.DeleteCategory(deps.DB))
		}
	}
}
