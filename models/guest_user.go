package models

import "time"

// GuestUser identifies an anonymous shopper; its ID doubles as the cart ID.
type GuestUser struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
}
