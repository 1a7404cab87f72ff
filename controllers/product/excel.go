package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/Ptamayo26/ferremas-final-sub001/models"
)

// ImportProductsFromExcel bulk-loads the catalog from a spreadsheet. Columns:
// Code, Name, Description, Brand, Price, DiscountPrice, Weight, Stock, Image,
// CategoryIDs. Rows are matched on Code: existing products are updated, new
// codes inserted. Bad rows are skipped and counted, never fatal.
func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse Excel file"})
			return
		}

		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		sheet := xlFile.Sheets[0]
		createdCount, updatedCount, skippedCount := 0, 0, 0

		for i := 1; i < sheet.MaxRow; i++ {
			row := sheet.Rows[i]

			get := func(index int) string {
				if index < len(row.Cells) {
					return strings.TrimSpace(row.Cells[index].String())
				}
				return ""
			}

			code := get(0)
			name := get(1)
			description := get(2)
			brand := get(3)
			price, err1 := strconv.ParseInt(get(4), 10, 64)
			weight, err2 := strconv.ParseFloat(get(6), 64)
			stock, _ := strconv.Atoi(get(7))
			image := get(8)
			categoryIDStr := get(9)

			var discountPrice *int64
			if raw := get(5); raw != "" {
				if dp, err := strconv.ParseInt(raw, 10, 64); err == nil {
					discountPrice = &dp
				}
			}

			if code == "" || name == "" || err1 != nil || err2 != nil || price < 1 {
				skippedCount++
				continue
			}
			if discountPrice != nil && *discountPrice > price {
				skippedCount++
				continue
			}

			var categories []models.Category
			for _, part := range strings.Split(categoryIDStr, ",") {
				if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
					categories = append(categories, models.Category{ID: uint(id)})
				}
			}

			var existing models.Product
			if err := db.Where("code = ?", code).First(&existing).Error; err == nil {
				existing.Name = name
				existing.Description = description
				existing.Brand = brand
				existing.Price = price
				existing.DiscountPrice = discountPrice
				existing.Weight = weight
				existing.Stock = stock
				existing.Image = image

				if err := db.Model(&existing).Association("Categories").Replace(categories); err != nil {
					skippedCount++
					continue
				}
				if err := db.Save(&existing).Error; err == nil {
					updatedCount++
				} else {
					skippedCount++
				}
				continue
			}

			product := models.Product{
				Code:          code,
				Name:          name,
				Description:   description,
				Brand:         brand,
				Price:         price,
				DiscountPrice: discountPrice,
				Weight:        weight,
				Stock:         stock,
				Image:         image,
				Categories:    categories,
			}
			if err := db.Create(&product).Error; err == nil {
				createdCount++
			} else {
				skippedCount++
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": createdCount,
			"updated_count": updatedCount,
			"skipped_count": skippedCount,
		})
	}
}
