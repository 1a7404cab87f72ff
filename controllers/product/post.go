package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ptamayo26/ferremas-final-sub001/models"
)

type ProductInput struct {
	Code          string  `json:"code" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Brand         string  `json:"brand"`
	Price         int64   `json:"price" binding:"required,min=1"`
	DiscountPrice *int64  `json:"discount_price"`
	Image         string  `json:"image"`
	Weight        float64 `json:"weight" binding:"required"`
	Stock         int     `json:"stock"`
	CategoryIDs   []uint  `json:"category_ids"`
}

// CreateProduct creates a new product with its categories.
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.DiscountPrice != nil && *input.DiscountPrice > input.Price {
			c.JSON(http.StatusBadRequest, gin.H{"error": "discount_price cannot exceed price"})
			return
		}

		var categories []models.Category
		if len(input.CategoryIDs) > 0 {
			if err := db.Where("id IN ?", input.CategoryIDs).Find(&categories).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
				return
			}
		}

		product := models.Product{
			Code:          input.Code,
			Name:          input.Name,
			Description:   input.Description,
			Brand:         input.Brand,
			Price:         input.Price,
			DiscountPrice: input.DiscountPrice,
			Image:         input.Image,
			Weight:        input.Weight,
			Stock:         input.Stock,
			Categories:    categories,
		}

		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}
