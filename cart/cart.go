// Package cart keeps shopping carts as whole JSON documents in a key-value
// store. Lines are merged by variant key; no operation on a loaded Cart can
// fail.
package cart

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/junaidrashid-git/marinetex-api/pricing"
)

// Selection is one "add to cart" click, already priced in the cart currency.
type Selection struct {
	ProductID           uint            `json:"productId"`
	Name                string          `json:"name"`
	Image               string          `json:"image,omitempty"`
	Size                string          `json:"size"`
	Color               string          `json:"color"`
	Embroidery          bool            `json:"embroidery"`
	EmbroideryAsset     string          `json:"embroideryAsset,omitempty"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	EmbroiderySurcharge decimal.Decimal `json:"embroiderySurcharge"`
}

type Line struct {
	Key string `json:"key"`
	Selection
	Quantity int `json:"quantity"`
}

func (l Line) Priced() pricing.Line {
	return pricing.Line{
		UnitPrice:           l.UnitPrice,
		EmbroiderySurcharge: l.EmbroiderySurcharge,
		Quantity:            l.Quantity,
	}
}

func (l Line) Total() decimal.Decimal {
	return l.Priced().Total()
}

type Cart struct {
	ID        string    `json:"id"`
	Language  string    `json:"language"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VariantKey identifies which selections collapse into the same line. Only
// the presence of an embroidery asset matters, not which asset it is.
func VariantKey(productID uint, size, color string, embroidery, hasAsset bool) string {
	return fmt.Sprintf("%d|%s|%s|%t|%t",
		productID,
		strings.ToLower(strings.TrimSpace(size)),
		strings.ToLower(strings.TrimSpace(color)),
		embroidery,
		hasAsset,
	)
}

func (s Selection) variantKey() string {
	return VariantKey(s.ProductID, s.Size, s.Color, s.Embroidery, s.EmbroideryAsset != "")
}

// AddItem bumps the matching line by one or appends a new line.
func (c *Cart) AddItem(sel Selection) Line {
	key := sel.variantKey()
	for i := range c.Lines {
		if c.Lines[i].Key == key {
			c.Lines[i].Quantity++
			return c.Lines[i]
		}
	}
	line := Line{Key: key, Selection: sel, Quantity: 1}
	c.Lines = append(c.Lines, line)
	return line
}

// UpdateQuantity sets the quantity of key; n <= 0 removes the line.
// It reports whether the line existed.
func (c *Cart) UpdateQuantity(key string, n int) bool {
	for i := range c.Lines {
		if c.Lines[i].Key != key {
			continue
		}
		if n <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		} else {
			c.Lines[i].Quantity = n
		}
		return true
	}
	return false
}

// RemoveItem deletes key. It reports whether the line existed.
func (c *Cart) RemoveItem(key string) bool {
	return c.UpdateQuantity(key, 0)
}

func (c *Cart) Clear() {
	c.Lines = nil
}

// SwitchLanguage changes the cart language. Prices are denominated in the
// language's currency, so a real change empties the cart.
func (c *Cart) SwitchLanguage(lang string) bool {
	if c.Language == lang {
		return false
	}
	c.Language = lang
	c.Clear()
	return true
}

func (c *Cart) TotalPrice() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Merge folds other's lines into c, adding quantities per variant key.
func (c *Cart) Merge(other *Cart) {
	for _, ol := range other.Lines {
		merged := false
		for i := range c.Lines {
			if c.Lines[i].Key == ol.Key {
				c.Lines[i].Quantity += ol.Quantity
				merged = true
				break
			}
		}
		if !merged {
			c.Lines = append(c.Lines, ol)
		}
	}
}

// GuestPrefix marks cart ids that belong to anonymous shoppers. Any other id
// is a user id.
const GuestPrefix = "guest_"

func IsGuestID(id string) bool {
	return strings.HasPrefix(id, GuestPrefix)
}

// OwnedBy reports whether userID (empty for guests) may change cart id.
// Guest carts are reachable by id; a user cart only by its owner.
func OwnedBy(id, userID string) bool {
	if IsGuestID(id) {
		return true
	}
	return id != "" && id == userID
}
