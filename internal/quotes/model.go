package quotes

import (
	"github.com/verandameister/quotedesk/internal/catalog"
)

// Status is a label on a quote. Any status may be set from any other.
type Status string

const (
	StatusCreated  Status = "AANGEMAAKT"
	StatusSent     Status = "VERSTUURD"
	StatusAccepted Status = "GEACCEPTEERD"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusCreated, StatusSent, StatusAccepted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusSent, StatusAccepted:
		return true
	}
	return false
}

// Item is a line on a quote. Catalog lines keep the article id; manual lines
// get a synthesized one.
type Item struct {
	catalog.Article
	Quantity int  `json:"quantity"`
	IsManual bool `json:"isManual"`
}

// Quote is a priced proposal for one customer. Amount is derived from the
// items when the quote is built and must not be set independently.
type Quote struct {
	ID               string  `json:"id"`
	CustomerName     string  `json:"customerName"`
	CustomerAddress  string  `json:"customerAddress"`
	CustomerPostcode string  `json:"customerPostcode"`
	CustomerCity     string  `json:"customerCity"`
	CustomerEmail    string  `json:"customerEmail"`
	CustomerPhone    string  `json:"customerPhone"`
	Slogan           string  `json:"slogan"`
	QuoteNumber      string  `json:"quoteNumber"`
	Status           Status  `json:"status"`
	Amount           float64 `json:"amount"`
	Date             Date    `json:"date"`
	ValidUntil       Date    `json:"validUntil"`
	Items            []Item  `json:"items"`
	IsInvoice        bool    `json:"isInvoice"`
}

// Clone returns a copy that does not share the items slice.
func (q Quote) Clone() Quote {
	if q.Items != nil {
		items := make([]Item, len(q.Items))
		copy(items, q.Items)
		q.Items = items
	}
	return q
}

// Customer groups the client fields of a quote.
type Customer struct {
	Name     string `json:"customerName" validate:"max=200"`
	Address  string `json:"customerAddress" validate:"max=200"`
	Postcode string `json:"customerPostcode" validate:"max=20"`
	City     string `json:"customerCity" validate:"max=120"`
	Email    string `json:"customerEmail" validate:"omitempty,email"`
	Phone    string `json:"customerPhone" validate:"max=40"`
}

// Customer returns the client fields of q.
func (q Quote) Customer() Customer {
	return Customer{
		Name:     q.CustomerName,
		Address:  q.CustomerAddress,
		Postcode: q.CustomerPostcode,
		City:     q.CustomerCity,
		Email:    q.CustomerEmail,
		Phone:    q.CustomerPhone,
	}
}
