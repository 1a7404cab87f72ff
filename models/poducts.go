package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string `gorm:"uniqueIndex;not null" json:"code"` // internal SKU, e.g. FER-00123
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Brand       string `json:"brand"`
	// Prices are tax-inclusive Chilean pesos. DiscountPrice, when set, is the
	// price actually charged; it must never exceed Price.
	Price         int64          `gorm:"not null" json:"price"`
	DiscountPrice *int64         `json:"discount_price,omitempty"`
	Image         string         `json:"image"`
	Weight        float64        `gorm:"not null" json:"weight"` // kg, used for carrier quotes
	Categories    []Category     `gorm:"many2many:product_categories;" json:"categories,omitempty"`
	Stock         int            `json:"stock"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// UnitPrice returns the price a cart line is charged at.
func (p Product) UnitPrice() int64 {
	if p.DiscountPrice != nil && *p.DiscountPrice < p.Price {
		return *p.DiscountPrice
	}
	return p.Price
}
