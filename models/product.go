package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Language codes the storefront renders in.
const (
	LangTR = "tr"
	LangEN = "en"
)

type Product struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	NameTR          string          `gorm:"not null" json:"nameTr"`
	NameEN          string          `json:"nameEn"`
	DescriptionTR   string          `json:"descriptionTr"`
	DescriptionEN   string          `json:"descriptionEn"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"` // TRY
	EmbroideryPrice decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"embroideryPrice"`
	Sizes           []string        `gorm:"serializer:json;type:text" json:"sizes"`
	Colors          []string        `gorm:"serializer:json;type:text" json:"colors"`
	Image           string          `json:"image"`
	Stock           int             `json:"stock"`
	Active          bool            `gorm:"default:true" json:"active"`
	Categories      []Category      `gorm:"many2many:product_categories;" json:"categories,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Name returns the product name in lang, falling back to Turkish.
func (p Product) Name(lang string) string {
	if lang == LangEN && p.NameEN != "" {
		return p.NameEN
	}
	return p.NameTR
}

func (p Product) Description(lang string) string {
	if lang == LangEN && p.DescriptionEN != "" {
		return p.DescriptionEN
	}
	return p.DescriptionTR
}

// OffersSize reports whether size is sellable. Products without a size list
// accept an empty size only.
func (p Product) OffersSize(size string) bool {
	return containsFold(p.Sizes, size)
}

func (p Product) OffersColor(color string) bool {
	return containsFold(p.Colors, color)
}

func containsFold(options []string, v string) bool {
	if len(options) == 0 {
		return v == ""
	}
	for _, o := range options {
		if strings.EqualFold(o, v) {
			return true
		}
	}
	return false
}
