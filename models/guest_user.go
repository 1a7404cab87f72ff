package models

import "time"

type GuestUser struct {
	ID        string `gorm:"primaryKey"`
	ExpiresAt time.Time
}
