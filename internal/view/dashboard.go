package view

import "github.com/verandameister/quotedesk/internal/quotes"

// DashboardData feeds pages/dashboard.html.
type DashboardData struct {
	Stats      quotes.Stats
	Quotes     []quotes.Quote
	Categories int
	Articles   int
	StoreMode  string
}
