package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/junaidrashid-git/marinetex-api/models"
)

type ShippingRates struct {
	DomesticTRY      decimal.Decimal `json:"domesticTry"`
	InternationalTRY decimal.Decimal `json:"internationalTry"`
	DomesticUSD      decimal.Decimal `json:"domesticUsd"`
	InternationalUSD decimal.Decimal `json:"internationalUsd"`
}

// DefaultShippingRates apply whenever the settings row cannot be read.
var DefaultShippingRates = ShippingRates{
	DomesticTRY:      decimal.NewFromInt(200),
	InternationalTRY: decimal.NewFromInt(1500),
	DomesticUSD:      decimal.NewFromInt(10),
	InternationalUSD: decimal.NewFromInt(50),
}

var domesticCountries = map[string]bool{
	"turkey":  true,
	"türkiye": true,
	"turkiye": true,
	"tr":      true,
	"tur":     true,
}

// IsDomestic reports whether country is one of the recognised spellings of
// Turkey. Anything else ships internationally.
func IsDomestic(country string) bool {
	c := strings.TrimSpace(country)
	return domesticCountries[strings.ToLower(c)] ||
		domesticCountries[strings.ToLowerSpecial(unicode.TurkishCase, c)]
}

// Pick selects the fee for a destination and display language.
func (r ShippingRates) Pick(country, lang string) decimal.Decimal {
	domestic := IsDomestic(country)
	if lang == models.LangEN {
		if domestic {
			return r.DomesticUSD
		}
		return r.InternationalUSD
	}
	if domestic {
		return r.DomesticTRY
	}
	return r.InternationalTRY
}

func (r ShippingRates) Validate() error {
	for name, v := range map[string]decimal.Decimal{
		"domesticTry":      r.DomesticTRY,
		"internationalTry": r.InternationalTRY,
		"domesticUsd":      r.DomesticUSD,
		"internationalUsd": r.InternationalUSD,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

type SettingsSource interface {
	ShippingRates(ctx context.Context) (ShippingRates, error)
}

// GormSettings stores the shipping rates in the single ShippingSetting row.
type GormSettings struct {
	db *gorm.DB
}

func NewGormSettings(db *gorm.DB) *GormSettings {
	return &GormSettings{db: db}
}

func (s *GormSettings) ShippingRates(ctx context.Context) (ShippingRates, error) {
	var row models.ShippingSetting
	if err := s.db.WithContext(ctx).First(&row, models.ShippingSettingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShippingRates{}, fmt.Errorf("shipping settings not configured: %w", err)
		}
		return ShippingRates{}, fmt.Errorf("load shipping settings: %w", err)
	}
	return ShippingRates{
		DomesticTRY:      row.DomesticTRY,
		InternationalTRY: row.InternationalTRY,
		DomesticUSD:      row.DomesticUSD,
		InternationalUSD: row.InternationalUSD,
	}, nil
}

func (s *GormSettings) SaveShippingRates(ctx context.Context, r ShippingRates) error {
	if err := r.Validate(); err != nil {
		return err
	}
	row := models.ShippingSetting{
		ID:               models.ShippingSettingID,
		DomesticTRY:      r.DomesticTRY,
		InternationalTRY: r.InternationalTRY,
		DomesticUSD:      r.DomesticUSD,
		InternationalUSD: r.InternationalUSD,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

// ShippingResolver looks up the fee for an order. It never fails: a broken
// settings source degrades to DefaultShippingRates.
type ShippingResolver struct {
	source     SettingsSource
	log        *zap.Logger
	OnFallback func()
}

func NewShippingResolver(source SettingsSource, log *zap.Logger) *ShippingResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &ShippingResolver{source: source, log: log}
}

func (r *ShippingResolver) Rates(ctx context.Context) ShippingRates {
	if r.source != nil {
		rates, err := r.source.ShippingRates(ctx)
		if err == nil {
			return rates
		}
		r.log.Warn("shipping settings unavailable, using defaults", zap.Error(err))
	}
	if r.OnFallback != nil {
		r.OnFallback()
	}
	return DefaultShippingRates
}

func (r *ShippingResolver) Resolve(ctx context.Context, country, lang string) decimal.Decimal {
	return r.Rates(ctx).Pick(country, lang)
}
