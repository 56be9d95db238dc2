package document

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verandameister/quotedesk/internal/catalog"
	"github.com/verandameister/quotedesk/internal/quotes"
)

const nbsp = "\u00a0"

func sampleQuote(invoice bool) quotes.Quote {
	return quotes.Quote{
		ID:               "q1",
		CustomerName:     "Jan Janssen",
		CustomerAddress:  "Dorpsstraat 1",
		CustomerPostcode: "1234 AB",
		CustomerCity:     "Utrecht",
		CustomerEmail:    "jan@example.com",
		QuoteNumber:      "2026262",
		Status:           quotes.StatusCreated,
		Date:             quotes.NewDate(2025, time.January, 31),
		ValidUntil:       quotes.NewDate(2025, time.February, 28),
		IsInvoice:        invoice,
		Items: []quotes.Item{
			{Article: catalog.Article{ID: "a1", Title: "Terrasdak", Details: "Glas\nAntraciet", Price: 1580}, Quantity: 1},
			{Article: catalog.Article{ID: "a2", Title: "Zijwand", Price: 1930}, Quantity: 2},
		},
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := map[string]string{
		"1234.5":  "1.234,50" + nbsp + "€",
		"0":       "0,00" + nbsp + "€",
		"2118.2":  "2.118,20" + nbsp + "€",
		"19.999":  "20,00" + nbsp + "€",
		"1000000": "1.000.000,00" + nbsp + "€",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatCurrency(decimal.RequireFromString(in)), in)
	}
}

func TestRenderQuoteMode(t *testing.T) {
	v := Render(sampleQuote(false), DefaultCompany())

	assert.Equal(t, "ANGEBOT", v.Title)
	assert.Equal(t, "Angebotsnummer", v.NumberLabel)
	assert.Equal(t, "Angebotsdatum", v.DateLabel)
	assert.True(t, v.ShowValidUntil)
	assert.Equal(t, "Gültig bis", v.ValidUntilLabel)
	assert.Equal(t, "28-02-2025", v.ValidUntil)
	assert.Equal(t, "31-01-2025", v.Date)
	assert.Equal(t, quotes.DefaultSlogan, v.Slogan)

	require.NotNil(t, v.Footer.Guarantee)
	assert.Equal(t, GuaranteeTitle, v.Footer.Guarantee.Title)
	assert.True(t, v.Footer.ShowSignature)
	assert.Equal(t, SignatureLabel, v.Footer.SignatureLabel)
	assert.Contains(t, v.Footer.Terms, "bis zum 28-02-2025 gültig")
	assert.True(t, v.Footer.KeepTogether)
	assert.True(t, v.Summary.KeepTogether)
}

func TestRenderInvoiceMode(t *testing.T) {
	v := Render(sampleQuote(true), DefaultCompany())

	assert.Equal(t, "RECHNUNG", v.Title)
	assert.Equal(t, "Rechnungsnummer", v.NumberLabel)
	assert.Equal(t, "Rechnungsdatum", v.DateLabel)
	assert.False(t, v.ShowValidUntil)
	assert.Empty(t, v.ValidUntil)
	assert.Nil(t, v.Footer.Guarantee)
	assert.False(t, v.Footer.ShowSignature)
	assert.Equal(t, InvoiceTerms, v.Footer.Terms)
}

func TestRenderLinesAndSummary(t *testing.T) {
	v := Render(sampleQuote(false), DefaultCompany())

	require.Len(t, v.Lines, 2)
	assert.Equal(t, 1, v.Lines[0].Position)
	assert.Equal(t, 2, v.Lines[1].Position)
	assert.Equal(t, "1.930,00"+nbsp+"€", v.Lines[1].UnitPrice)
	assert.Equal(t, "3.860,00"+nbsp+"€", v.Lines[1].Total)
	assert.Equal(t, "19%", v.Lines[0].VATRate)

	// gross 5440, net 1327.73.. + 3243.69.. = 4571.43
	assert.Equal(t, "5.440,00"+nbsp+"€", v.Summary.Gross)
	assert.Equal(t, "4.571,43"+nbsp+"€", v.Summary.Net)
	assert.Equal(t, "868,57"+nbsp+"€", v.Summary.VAT)
}

func TestRenderEmptyQuote(t *testing.T) {
	v := Render(quotes.Quote{CustomerName: "Leeg"}, DefaultCompany())
	assert.Empty(t, v.Lines)
	assert.Equal(t, "0,00"+nbsp+"€", v.Summary.Gross)
}

func TestFooterCompanyLine(t *testing.T) {
	v := Render(sampleQuote(true), DefaultCompany())
	assert.Equal(t, "VerandaMeister - Kraanstraat - 6541 EJ Nijmegen", v.Footer.CompanyLine)
	assert.Equal(t, "www.verandameister.de | kontakt@verandameister.de", v.Footer.ContactLine)
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, Render(sampleQuote(false), DefaultCompany())))
	out := buf.String()

	assert.Contains(t, out, "ANGEBOT")
	assert.Contains(t, out, "break-inside: avoid")
	assert.Contains(t, out, `class="summary keep-together"`)
	assert.Contains(t, out, "Unterschrift / Annahme")
	assert.Contains(t, out, "Glas<br>Antraciet<br>")
	assert.Equal(t, 2, strings.Count(out, `<td class="num">19%</td>`))

	buf.Reset()
	require.NoError(t, HTML(&buf, Render(sampleQuote(true), DefaultCompany())))
	assert.NotContains(t, buf.String(), "Unterschrift / Annahme")
	assert.NotContains(t, buf.String(), "Gültig bis")
}

func TestETagStable(t *testing.T) {
	body, err := HTMLBytes(Render(sampleQuote(false), DefaultCompany()))
	require.NoError(t, err)
	again, err := HTMLBytes(Render(sampleQuote(false), DefaultCompany()))
	require.NoError(t, err)
	assert.Equal(t, ETag(body), ETag(again))

	other, err := HTMLBytes(Render(sampleQuote(true), DefaultCompany()))
	require.NoError(t, err)
	assert.NotEqual(t, ETag(body), ETag(other))
}
