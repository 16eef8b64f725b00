// Package pricing holds the money rules of the storefront: currency
// conversion, shipping fees and order totals. Amounts are decimal.Decimal
// throughout; the catalog is priced in TRY.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/junaidrashid-git/marinetex-api/models"
)

const (
	CurrencyTRY = "TRY"
	CurrencyUSD = "USD"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// CurrencyFor returns the display currency used for lang.
func CurrencyFor(lang string) (string, error) {
	switch lang {
	case models.LangTR:
		return CurrencyTRY, nil
	case models.LangEN:
		return CurrencyUSD, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
}

// Round2 rounds to kuruş / cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
