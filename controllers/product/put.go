package productcontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ptamayo26/ferremas-final-sub001/models"
)

type UpdateProductInput struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Brand         *string  `json:"brand"`
	Price         *int64   `json:"price"`
	DiscountPrice *int64   `json:"discount_price"`
	Image         *string  `json:"image"`
	Weight        *float64 `json:"weight"`
	Stock         *int     `json:"stock"`
	CategoryIDs   *[]uint  `json:"category_ids"`
}

// UpdateProduct applies a partial update. Cart lines are snapshots, so a price
// change here never reaches lines already in a cart.
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		var product models.Product
		if err := db.Preload("Categories").First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
			}
			return
		}

		var input UpdateProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		updates := make(map[string]interface{})
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.Brand != nil {
			updates["brand"] = *input.Brand
		}
		if input.Price != nil {
			if *input.Price < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
				return
			}
			updates["price"] = *input.Price
		}
		if input.DiscountPrice != nil {
			updates["discount_price"] = *input.DiscountPrice
		}
		if input.Image != nil {
			updates["image"] = *input.Image
		}
		if input.Weight != nil {
			updates["weight"] = *input.Weight
		}
		if input.Stock != nil {
			updates["stock"] = *input.Stock
		}

		if len(updates) > 0 {
			if err := db.Model(&product).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
				return
			}
		}

		if input.CategoryIDs != nil {
			var categories []models.Category
			if len(*input.CategoryIDs) > 0 {
				if err := db.Where("id IN ?", *input.CategoryIDs).Find(&categories).Error; err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
					return
				}
			}
			if err := db.Model(&product).Association("Categories").Replace(categories); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update categories"})
				return
			}
		}

		db.Preload("Categories").First(&product, id)
		c.JSON(http.StatusOK, product)
	}
}
