package pricing

import "github.com/shopspring/decimal"

// Line is the priced part of a cart line or order item.
type Line struct {
	UnitPrice           decimal.Decimal
	EmbroiderySurcharge decimal.Decimal
	Quantity            int
}

// Total is (unit price + embroidery surcharge) * quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Add(l.EmbroiderySurcharge).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Totals struct {
	ItemsTotal decimal.Decimal `json:"itemsTotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Total      decimal.Decimal `json:"total"`
}

// SumLines adds up the line totals.
func SumLines(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// Calculate produces the authoritative order total from server-side lines
// and an already resolved shipping fee.
func Calculate(lines []Line, shipping decimal.Decimal) Totals {
	items := SumLines(lines)
	return Totals{
		ItemsTotal: items,
		Shipping:   shipping,
		Total:      items.Add(shipping),
	}
}
