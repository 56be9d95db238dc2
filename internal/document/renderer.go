package document

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/verandameister/quotedesk/internal/quotes"
)

// DisplayVATRate is the rate printed on every line. Line prices are shown
// VAT-inclusive.
const DisplayVATRate = 19

var vatDivisor = decimal.NewFromInt(100 + DisplayVATRate).Div(decimal.NewFromInt(100))

// Text blocks of the printed document.
const (
	GuaranteeTitle = "Vertrauensgarantie:"
	GuaranteeText  = "Keine Anzahlung – Sie zahlen erst nach der vollständigen und fachgerechten Montage vor Ort."
	InvoiceTerms   = "Bitte begleichen Sie den Rechnungsbetrag innerhalb van 14 Tagen ohne Abzug. Vielen Dank für Ihren Auftrag!"
	SignatureLabel = "Unterschrift / Annahme"
)

// Headers are the line table column titles.
var Headers = []string{"Pos.", "Beschreibung", "Preis (inkl.)", "Gesamt", "MwSt."}

// Client is the addressee block.
type Client struct {
	Name     string
	Address  string
	Postcode string
	City     string
	Email    string
}

// Line is one printed table row.
type Line struct {
	Position  int
	Title     string
	Details   string
	Quantity  int
	UnitPrice string
	Total     string
	VATRate   string
}

// Summary holds the printed totals. Line prices include VAT, so the net
// amount is derived from the gross one.
type Summary struct {
	NetLabel     string
	VATLabel     string
	GrossLabel   string
	Net          string
	VAT          string
	Gross        string
	KeepTogether bool
}

// Guarantee is the quote-only acceptance disclaimer.
type Guarantee struct {
	Title string
	Text  string
}

// Footer closes the document.
type Footer struct {
	Guarantee      *Guarantee
	Terms          string
	CompanyLine    string
	ContactLine    string
	ShowSignature  bool
	SignatureLabel string
	KeepTogether   bool
}

// View is a quote prepared for printing. It carries display strings only.
type View struct {
	ID              string
	IsInvoice       bool
	Title           string
	NumberLabel     string
	DateLabel       string
	ValidUntilLabel string
	Number          string
	Date            string
	ValidUntil      string
	ShowValidUntil  bool
	Slogan          string
	Company         Company
	Client          Client
	Headers         []string
	Lines           []Line
	Summary         Summary
	Footer          Footer
}

// Render maps q onto the print layout for company. It has no side effects.
func Render(q quotes.Quote, company Company) View {
	v := View{
		ID:        q.ID,
		IsInvoice: q.IsInvoice,
		Number:    q.QuoteNumber,
		Date:      q.Date.String(),
		Slogan:    q.Slogan,
		Company:   company,
		Client: Client{
			Name:     q.CustomerName,
			Address:  q.CustomerAddress,
			Postcode: q.CustomerPostcode,
			City:     q.CustomerCity,
			Email:    q.CustomerEmail,
		},
		Headers: Headers,
	}
	if v.Slogan == "" {
		v.Slogan = quotes.DefaultSlogan
	}

	if q.IsInvoice {
		v.Title = "RECHNUNG"
		v.NumberLabel = "Rechnungsnummer"
		v.DateLabel = "Rechnungsdatum"
	} else {
		v.Title = "ANGEBOT"
		v.NumberLabel = "Angebotsnummer"
		v.DateLabel = "Angebotsdatum"
		v.ValidUntilLabel = "Gültig bis"
		v.ValidUntil = q.ValidUntil.String()
		v.ShowValidUntil = true
	}

	gross := decimal.Zero
	net := decimal.Zero
	v.Lines = make([]Line, 0, len(q.Items))
	for i, it := range q.Items {
		price := decimal.NewFromFloat(it.Price)
		total := price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		gross = gross.Add(total)
		net = net.Add(total.Div(vatDivisor))
		v.Lines = append(v.Lines, Line{
			Position:  i + 1,
			Title:     it.Title,
			Details:   it.Details,
			Quantity:  it.Quantity,
			UnitPrice: FormatCurrency(price),
			Total:     FormatCurrency(total),
			VATRate:   strconv.Itoa(DisplayVATRate) + "%",
		})
	}
	gross = gross.Round(2)
	net = net.Round(2)
	v.Summary = Summary{
		NetLabel:     "Netto Summe",
		VATLabel:     "MwSt. Betrag",
		GrossLabel:   "GESAMT",
		Net:          FormatCurrency(net),
		VAT:          FormatCurrency(gross.Sub(net)),
		Gross:        FormatCurrency(gross),
		KeepTogether: true,
	}

	v.Footer = Footer{
		CompanyLine:  company.Name + " - " + company.Address + " - " + company.ZipCode + " " + company.City,
		ContactLine:  company.Website + " | " + company.Email,
		KeepTogether: true,
	}
	if q.IsInvoice {
		v.Footer.Terms = InvoiceTerms
	} else {
		v.Footer.Guarantee = &Guarantee{Title: GuaranteeTitle, Text: GuaranteeText}
		v.Footer.Terms = "Dieses Angebot ist freibleibend und bis zum " + v.ValidUntil + " gültig. Wir freuen uns auf Ihre Rückmeldung."
		v.Footer.ShowSignature = true
		v.Footer.SignatureLabel = SignatureLabel
	}
	return v
}
