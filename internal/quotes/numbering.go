package quotes

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SeedNumber is handed out when no existing quote number parses.
const SeedNumber = "2026261"

// NextNumber returns one more than the largest numeric quote number. Non-digit
// characters such as a leading "#" are ignored.
func NextNumber(quotes []Quote) string {
	var (
		max   decimal.Decimal
		found bool
	)
	for _, q := range quotes {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, q.QuoteNumber)
		if digits == "" {
			continue
		}
		n, err := decimal.NewFromString(digits)
		if err != nil {
			continue
		}
		if !found || n.GreaterThan(max) {
			max = n
			found = true
		}
	}
	if !found {
		return SeedNumber
	}
	return max.Add(decimal.NewFromInt(1)).String()
}
