package models

import "time"

type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	Provider  string    `json:"provider"`
	Addresses []Address `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Address is an address book entry. Orders copy it into a ShippingAddress.
type Address struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"index;not null" json:"-"`
	Title      string    `json:"title"` // "Home", "Marina", ...
	FullName   string    `json:"fullName" binding:"required"`
	Phone      string    `json:"phone" binding:"required"`
	Email      string    `json:"email" binding:"omitempty,email"`
	Line1      string    `json:"line1" binding:"required"`
	Line2      string    `json:"line2"`
	District   string    `json:"district"`
	City       string    `json:"city" binding:"required"`
	PostalCode string    `json:"postalCode"`
	Country    string    `json:"country" binding:"required"`
	IsDefault  bool      `json:"isDefault"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Snapshot copies the entry into an order shipping address. email is used
// when the entry carries none.
func (a Address) Snapshot(email string) ShippingAddress {
	if a.Email != "" {
		email = a.Email
	}
	return ShippingAddress{
		FullName:   a.FullName,
		Phone:      a.Phone,
		Email:      email,
		Line1:      a.Line1,
		Line2:      a.Line2,
		District:   a.District,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
