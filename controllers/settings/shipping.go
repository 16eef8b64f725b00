package settingsControllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/junaidrashid-git/marinetex-api/pricing"
)

// GET /shipping/quote?country=&lang=
func ShippingQuote(resolver *pricing.ShippingResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		country := strings.TrimSpace(c.Query("country"))
		if country == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "country is required"})
			return
		}
		lang := c.DefaultQuery("lang", "tr")
		currency, err := pricing.CurrencyFor(lang)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lang must be tr or en"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"country":  country,
			"domestic": pricing.IsDomestic(country),
			"fee":      resolver.Resolve(c.Request.Context(), country, lang),
			"currency": currency,
		})
	}
}

// GET /admin/settings/shipping. Shows the effective rates, defaults included.
func GetShippingSettings(resolver *pricing.ShippingResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, resolver.Rates(c.Request.Context()))
	}
}

// ShippingRatesInput is the admin body. Every amount must be sent; a
// missing one would otherwise be stored as a free shipping fee.
type ShippingRatesInput struct {
	DomesticTRY      decimal.NullDecimal `json:"domesticTry"`
	InternationalTRY decimal.NullDecimal `json:"internationalTry"`
	DomesticUSD      decimal.NullDecimal `json:"domesticUsd"`
	InternationalUSD decimal.NullDecimal `json:"internationalUsd"`
}

func (in ShippingRatesInput) rates() (pricing.ShippingRates, []string) {
	var missing []string
	pick := func(name string, v decimal.NullDecimal) decimal.Decimal {
		if !v.Valid {
			missing = append(missing, name)
		}
		return v.Decimal
	}
	r := pricing.ShippingRates{
		DomesticTRY:      pick("domesticTry", in.DomesticTRY),
		InternationalTRY: pick("internationalTry", in.InternationalTRY),
		DomesticUSD:      pick("domesticUsd", in.DomesticUSD),
		InternationalUSD: pick("internationalUsd", in.InternationalUSD),
	}
	return r, missing
}

// PUT /admin/settings/shipping
func UpdateShippingSettings(settings *pricing.GormSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ShippingRatesInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		rates, missing := input.rates()
		if len(missing) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "all shipping amounts are required", "missing": missing})
			return
		}
		if err := rates.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := settings.SaveShippingRates(c.Request.Context(), rates); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save shipping settings"})
			return
		}
		c.JSON(http.StatusOK, rates)
	}
}
