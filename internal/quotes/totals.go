package quotes

import "github.com/shopspring/decimal"

// VATRate is the fixed value added tax applied to every quote.
var VATRate = decimal.RequireFromString("0.19")

// Totals are the money fields of a quote, rounded to cents.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	VAT      decimal.Decimal `json:"vat"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals sums price times quantity over items and adds VAT on top.
func ComputeTotals(items []Item) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)
	vat := subtotal.Mul(VATRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		VAT:      vat,
		Total:    subtotal.Add(vat),
	}
}
