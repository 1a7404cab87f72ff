package models

import "time"

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	UserID    string     `gorm:"uniqueIndex" json:"user_id"`                    // Enforces ONE cart per user
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"` // Cascade delete items if cart is deleted
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CartID    uint `gorm:"index" json:"-"` // Faster queries
	ProductID uint `json:"product_id"`
	// Snapshot of the product at the moment it was added. Prices are
	// tax-inclusive pesos; DiscountedUnitPrice ≤ UnitPrice when present.
	ProductName         string    `json:"product_name"`
	ProductImage        string    `json:"product_image"`
	UnitPrice           int64     `json:"unit_price"`
	DiscountedUnitPrice *int64    `json:"discounted_unit_price,omitempty"`
	Quantity            int       `json:"quantity"`
	AddedAt             time.Time `json:"added_at"`
}

// EffectiveUnitPrice is the price the line is charged at.
func (i CartItem) EffectiveUnitPrice() int64 {
	if i.DiscountedUnitPrice != nil {
		return *i.DiscountedUnitPrice
	}
	return i.UnitPrice
}
