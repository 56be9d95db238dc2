package quotes

// QuoteRequest is the payload for creating or replacing a quote. Items are
// applied through the builder, so catalog lines are merged by article id.
type QuoteRequest struct {
	Customer
	Slogan      string        `json:"slogan" validate:"max=200"`
	QuoteNumber string        `json:"quoteNumber" validate:"max=32"`
	Date        Date          `json:"date"`
	ValidUntil  Date          `json:"validUntil"`
	IsInvoice   bool          `json:"isInvoice"`
	Items       []ItemRequest `json:"items" validate:"max=500,dive"`
}

// ItemRequest is one line. Lines with an articleId are taken from the
// catalog; title, details and price then act as overrides. Lines without
// an articleId are manual.
type ItemRequest struct {
	ArticleID string   `json:"articleId" validate:"max=64"`
	Title     string   `json:"title" validate:"max=300"`
	Details   string   `json:"details" validate:"max=4000"`
	Price     *float64 `json:"price" validate:"omitempty,gte=0"`
	Quantity  int      `json:"quantity" validate:"gte=0,lte=100000"`
}

// StatusRequest changes the status tag.
type StatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

// NextNumberResponse carries the number a new quote would get.
type NextNumberResponse struct {
	QuoteNumber string `json:"quoteNumber"`
}

// DraftResponse shows a quote together with its computed totals.
type DraftResponse struct {
	Quote  Quote  `json:"quote"`
	Totals Totals `json:"totals"`
}
