package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShippingSettingID is the primary key of the single settings row.
const ShippingSettingID = 1

type ShippingSetting struct {
	ID               uint            `gorm:"primaryKey" json:"-"`
	DomesticTRY      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"domesticTry"`
	InternationalTRY decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"internationalTry"`
	DomesticUSD      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"domesticUsd"`
	InternationalUSD decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"internationalUsd"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// AutoMigrate creates or updates every table the API owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Address{},
		&GuestUser{},
		&Category{},
		&Product{},
		&Order{},
		&OrderItem{},
		&ShippingSetting{},
	)
}
