package quotes

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/verandameister/quotedesk/internal/catalog"
	"github.com/verandameister/quotedesk/internal/shared"
)

// Defaults for new drafts and manual lines.
const (
	DefaultSlogan      = "Ihre Terrasse, unser Meisterwerk"
	ManualItemTitle    = "NIEUW ARTIKEL"
	ManualItemDetails  = "Voer hier de beschrijving in..."
	manualItemIDPrefix = "manual-"
)

// ItemField names an editable attribute of a quote line.
type ItemField string

const (
	ItemTitle    ItemField = "title"
	ItemDetails  ItemField = "details"
	ItemPrice    ItemField = "price"
	ItemQuantity ItemField = "quantity"
)

// Builder composes a quote draft, either new or based on an existing quote.
// It is not safe for concurrent use.
type Builder struct {
	base  *Quote
	draft Quote
	newID func() string
}

// NewBuilder starts a draft. With a nil base the draft is new: it gets
// nextNumber, today as date, a one month validity and the default slogan.
// With a base the draft copies it and strips a leading "#" from the number.
func NewBuilder(base *Quote, nextNumber string, today Date) *Builder {
	b := &Builder{newID: uuid.NewString}
	if base != nil {
		orig := base.Clone()
		b.base = &orig
		b.draft = base.Clone()
		b.draft.QuoteNumber = strings.TrimPrefix(strings.TrimSpace(b.draft.QuoteNumber), "#")
		if b.draft.ValidUntil.IsZero() {
			b.draft.ValidUntil = b.draft.Date.AddMonth()
		}
		if b.draft.Slogan == "" {
			b.draft.Slogan = DefaultSlogan
		}
		if b.draft.Items == nil {
			b.draft.Items = []Item{}
		}
		return b
	}
	b.draft = Quote{
		QuoteNumber: nextNumber,
		Date:        today,
		ValidUntil:  today.AddMonth(),
		Slogan:      DefaultSlogan,
		Items:       []Item{},
	}
	return b
}

// Draft returns a copy of the current draft. Amount reflects the items.
func (b *Builder) Draft() Quote {
	q := b.draft.Clone()
	q.Amount = b.Totals().Total.InexactFloat64()
	return q
}

// Items returns a copy of the draft lines.
func (b *Builder) Items() []Item {
	return b.draft.Clone().Items
}

// Totals computes the money fields of the current lines.
func (b *Builder) Totals() Totals {
	return ComputeTotals(b.draft.Items)
}

// SetCustomer replaces the client fields.
func (b *Builder) SetCustomer(c Customer) {
	b.draft.CustomerName = c.Name
	b.draft.CustomerAddress = c.Address
	b.draft.CustomerPostcode = c.Postcode
	b.draft.CustomerCity = c.City
	b.draft.CustomerEmail = c.Email
	b.draft.CustomerPhone = c.Phone
}

// SetSlogan sets the display slogan.
func (b *Builder) SetSlogan(slogan string) {
	b.draft.Slogan = slogan
}

// SetNumber overrides the quote number.
func (b *Builder) SetNumber(number string) {
	b.draft.QuoteNumber = strings.TrimPrefix(strings.TrimSpace(number), "#")
}

// SetInvoice switches between quote and invoice mode.
func (b *Builder) SetInvoice(invoice bool) {
	b.draft.IsInvoice = invoice
}

// SetDate changes the document date and derives the validity date from it.
func (b *Builder) SetDate(d Date) {
	b.draft.Date = d
	b.draft.ValidUntil = d.AddMonth()
}

// SetValidUntil changes the validity date only.
func (b *Builder) SetValidUntil(d Date) {
	b.draft.ValidUntil = d
}

// ClearItems removes every line.
func (b *Builder) ClearItems() {
	b.draft.Items = []Item{}
}

// AddFromCatalog adds one unit of a catalog article. A catalog line for the
// same article is incremented instead of duplicated.
func (b *Builder) AddFromCatalog(a catalog.Article) {
	items := make([]Item, 0, len(b.draft.Items)+1)
	found := false
	for _, it := range b.draft.Items {
		if !found && it.ID == a.ID && !it.IsManual {
			it.Quantity++
			found = true
		}
		items = append(items, it)
	}
	if !found {
		items = append(items, Item{Article: a, Quantity: 1})
	}
	b.draft.Items = items
}

// AddManual appends a placeholder line and returns its id.
func (b *Builder) AddManual() string {
	return b.AddManualWithID("")
}

// AddManualWithID appends a placeholder line under id, as sent back by a
// client editing a saved quote. An empty or already used id gets a fresh one.
func (b *Builder) AddManualWithID(id string) string {
	if id == "" || b.hasItem(id) {
		id = manualItemIDPrefix + b.newID()
	}
	b.draft.Items = append(b.draft.Clone().Items, Item{
		Article: catalog.Article{
			ID:      id,
			Title:   ManualItemTitle,
			Details: ManualItemDetails,
		},
		Quantity: 1,
		IsManual: true,
	})
	return id
}

func (b *Builder) hasItem(id string) bool {
	for _, it := range b.draft.Items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// IsManualItemID reports whether id was generated for a manual line.
func IsManualItemID(id string) bool {
	return strings.HasPrefix(id, manualItemIDPrefix)
}

// UpdateItem replaces one field of the line with id. Price input that does
// not parse becomes 0 and quantity input below 1 becomes 1. Unknown ids are
// ignored.
func (b *Builder) UpdateItem(id string, field ItemField, value string) error {
	switch field {
	case ItemTitle, ItemDetails, ItemPrice, ItemQuantity:
	default:
		return &shared.ValidationError{Field: "field", Message: "unknown item field " + string(field)}
	}
	b.mapItem(id, func(it Item) Item {
		switch field {
		case ItemTitle:
			it.Title = value
		case ItemDetails:
			it.Details = value
		case ItemPrice:
			it.Price = catalog.ParseAmount(value)
		case ItemQuantity:
			it.Quantity = parseQuantity(value)
		}
		return it
	})
	return nil
}

// AdjustQuantity adds delta to the quantity of a line, never going below 1.
func (b *Builder) AdjustQuantity(id string, delta int) {
	b.mapItem(id, func(it Item) Item {
		it.Quantity += delta
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		return it
	})
}

// RemoveItem deletes the line with id.
func (b *Builder) RemoveItem(id string) {
	items := make([]Item, 0, len(b.draft.Items))
	for _, it := range b.draft.Items {
		if it.ID != id {
			items = append(items, it)
		}
	}
	b.draft.Items = items
}

// Build validates the draft and returns the quote to store. Edits keep their
// id and status. New quotes get newID and status AANGEMAAKT. Amount is set to
// the computed total including VAT.
func (b *Builder) Build(newID string) (Quote, error) {
	if strings.TrimSpace(b.draft.CustomerName) == "" {
		return Quote{}, &shared.ValidationError{Field: "customerName", Message: "customer name is required"}
	}
	q := b.draft.Clone()
	if b.base != nil {
		q.ID = b.base.ID
		q.Status = b.base.Status
	} else {
		q.ID = newID
		q.Status = StatusCreated
	}
	if q.ID == "" {
		q.ID = newID
	}
	if !q.Status.Valid() {
		q.Status = StatusCreated
	}
	if q.ValidUntil.IsZero() {
		q.ValidUntil = q.Date.AddMonth()
	}
	q.Amount = ComputeTotals(q.Items).Total.InexactFloat64()
	return q, nil
}

func (b *Builder) mapItem(id string, fn func(Item) Item) {
	items := make([]Item, len(b.draft.Items))
	for i, it := range b.draft.Items {
		if it.ID == id {
			it = fn(it)
		}
		items[i] = it
	}
	b.draft.Items = items
}

func parseQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
