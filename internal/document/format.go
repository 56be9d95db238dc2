package document

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// currencySuffix separates amount and symbol with a no-break space like
// de-DE formatting does.
const currencySuffix = "\u00a0€"

var printer = message.NewPrinter(language.German)

// FormatCurrency renders v as a de-DE euro amount, e.g. "1.234,50 €".
func FormatCurrency(v decimal.Decimal) string {
	return printer.Sprintf("%.2f", v.Round(2).InexactFloat64()) + currencySuffix
}
