package quotes

import "github.com/shopspring/decimal"

// Repository is an ordered in-memory quote collection, most recent first.
// It is not safe for concurrent use.
type Repository struct {
	quotes []Quote
}

// Stats are portfolio aggregates recomputed on every call.
type Stats struct {
	Count         int     `json:"count"`
	TotalValue    float64 `json:"totalValue"`
	SentValue     float64 `json:"sentValue"`
	AcceptedValue float64 `json:"acceptedValue"`
}

// NewRepository wraps a copy of quotes in their given order.
func NewRepository(quotes []Quote) *Repository {
	r := &Repository{}
	r.Replace(quotes)
	return r
}

// Replace swaps the whole collection.
func (r *Repository) Replace(quotes []Quote) {
	r.quotes = cloneAll(quotes)
}

// All returns every quote.
func (r *Repository) All() []Quote {
	return cloneAll(r.quotes)
}

// List returns the quotes, restricted to one status when filter is set.
func (r *Repository) List(filter *Status) []Quote {
	out := make([]Quote, 0, len(r.quotes))
	for _, q := range r.quotes {
		if filter != nil && q.Status != *filter {
			continue
		}
		out = append(out, q.Clone())
	}
	return out
}

// Get returns the quote with id.
func (r *Repository) Get(id string) (Quote, bool) {
	for _, q := range r.quotes {
		if q.ID == id {
			return q.Clone(), true
		}
	}
	return Quote{}, false
}

// Upsert replaces the quote with the same id in place or prepends q.
func (r *Repository) Upsert(q Quote) {
	for i := range r.quotes {
		if r.quotes[i].ID == q.ID {
			r.quotes[i] = q.Clone()
			return
		}
	}
	r.quotes = append([]Quote{q.Clone()}, r.quotes...)
}

// Remove deletes the quote with id and reports whether it existed.
func (r *Repository) Remove(id string) bool {
	for i := range r.quotes {
		if r.quotes[i].ID == id {
			r.quotes = append(r.quotes[:i:i], r.quotes[i+1:]...)
			return true
		}
	}
	return false
}

// SetStatus overwrites the status of quote id without checking the
// transition. It reports whether the quote existed.
func (r *Repository) SetStatus(id string, status Status) bool {
	for i := range r.quotes {
		if r.quotes[i].ID == id {
			r.quotes[i].Status = status
			return true
		}
	}
	return false
}

// NextNumber derives the number for a new quote.
func (r *Repository) NextNumber() string {
	return NextNumber(r.quotes)
}

// Stats sums quote amounts overall and for sent and accepted quotes.
func (r *Repository) Stats() Stats {
	total, sent, accepted := decimal.Zero, decimal.Zero, decimal.Zero
	for _, q := range r.quotes {
		amount := decimal.NewFromFloat(q.Amount)
		total = total.Add(amount)
		switch q.Status {
		case StatusSent:
			sent = sent.Add(amount)
		case StatusAccepted:
			accepted = accepted.Add(amount)
		}
	}
	return Stats{
		Count:         len(r.quotes),
		TotalValue:    total.InexactFloat64(),
		SentValue:     sent.InexactFloat64(),
		AcceptedValue: accepted.InexactFloat64(),
	}
}

func cloneAll(quotes []Quote) []Quote {
	out := make([]Quote, len(quotes))
	for i, q := range quotes {
		out[i] = q.Clone()
	}
	return out
}
