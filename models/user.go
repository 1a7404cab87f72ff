package models

import "time"

type User struct {
	ID        string  `gorm:"primaryKey" json:"id"`
	Email     string  `gorm:"unique;not null" json:"email"`
	RUT       string  `gorm:"column:rut" json:"rut"`
	Phone     string  `json:"phone"`
	Name      string  `json:"name"`
	Address   Address `gorm:"embedded" json:"address"` // Embeds address fields directly
	Cart      Cart    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"cart"`
	Orders    []Order `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"orders"`
	CreatedAt time.Time `json:"created_at"`
}

// Address model embedded in User and Order
type Address struct {
	Region     string `json:"region"`
	Comuna     string `json:"comuna"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	PostalCode string `json:"postal_code"`
}
