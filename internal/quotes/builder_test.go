package quotes

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verandameister/quotedesk/internal/catalog"
	"github.com/verandameister/quotedesk/internal/shared"
)

var (
	terrace = catalog.Article{ID: "a1", Title: "Premium Aluminium Terrassenüberdachung 300 × 200", Details: "- Dacheindeckung", Price: 1580}
	sideway = catalog.Article{ID: "a2", Title: "Premium Aluminium Terrassenüberdachung 300 × 250", Price: 1930}
)

func newTestBuilder(base *Quote) *Builder {
	b := NewBuilder(base, "2026262", NewDate(2025, time.January, 31))
	n := 0
	b.newID = func() string {
		n++
		return fmt.Sprintf("%d", n)
	}
	return b
}

func TestNewDraftDefaults(t *testing.T) {
	b := newTestBuilder(nil)
	d := b.Draft()
	assert.Equal(t, "2026262", d.QuoteNumber)
	assert.Equal(t, "31-01-2025", d.Date.String())
	assert.Equal(t, "28-02-2025", d.ValidUntil.String())
	assert.Equal(t, DefaultSlogan, d.Slogan)
	assert.Empty(t, d.Items)
}

func TestAddFromCatalogIncrementsExistingLine(t *testing.T) {
	b := newTestBuilder(nil)
	b.AddFromCatalog(terrace)
	b.AddFromCatalog(sideway)
	b.AddFromCatalog(terrace)

	items := b.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a1", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.False(t, items[0].IsManual)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestAddManualAlwaysCreatesLine(t *testing.T) {
	b := newTestBuilder(nil)
	first := b.AddManual()
	second := b.AddManual()
	require.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "manual-"))

	require.NoError(t, b.UpdateItem(first, ItemTitle, "Montage"))
	require.NoError(t, b.UpdateItem(second, ItemTitle, "Montage"))

	items := b.Items()
	require.Len(t, items, 2)
	for _, it := range items {
		assert.True(t, it.IsManual)
		assert.Equal(t, 1, it.Quantity)
		assert.Equal(t, ManualItemDetails, it.Details)
		assert.Zero(t, it.Price)
	}
}

func TestAddManualWithIDReusesFreeID(t *testing.T) {
	b := newTestBuilder(nil)
	assert.Equal(t, "manual-7", b.AddManualWithID("manual-7"))
	again := b.AddManualWithID("manual-7")
	assert.NotEqual(t, "manual-7", again)
	assert.True(t, IsManualItemID(again))
	assert.False(t, IsManualItemID("a1"))

	items := b.Items()
	require.Len(t, items, 2)
	assert.True(t, items[0].IsManual)
	assert.Equal(t, ManualItemTitle, items[0].Title)
}

func TestManualLineDoesNotMergeWithCatalogLine(t *testing.T) {
	b := newTestBuilder(nil)
	b.AddFromCatalog(terrace)
	id := b.AddManual()
	require.NoError(t, b.UpdateItem(id, ItemPrice, "1580"))
	b.AddFromCatalog(terrace)

	items := b.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestUpdateItemCoercion(t *testing.T) {
	b := newTestBuilder(nil)
	id := b.AddManual()

	require.NoError(t, b.UpdateItem(id, ItemPrice, "12,50"))
	assert.Equal(t, 12.5, b.Items()[0].Price)
	require.NoError(t, b.UpdateItem(id, ItemPrice, "twelve"))
	assert.Zero(t, b.Items()[0].Price)

	require.NoError(t, b.UpdateItem(id, ItemQuantity, "4"))
	assert.Equal(t, 4, b.Items()[0].Quantity)
	require.NoError(t, b.UpdateItem(id, ItemQuantity, "0"))
	assert.Equal(t, 1, b.Items()[0].Quantity)
	require.NoError(t, b.UpdateItem(id, ItemQuantity, "x"))
	assert.Equal(t, 1, b.Items()[0].Quantity)

	err := b.UpdateItem(id, ItemField("vat"), "7")
	require.ErrorIs(t, err, shared.ErrValidation)

	require.NoError(t, b.UpdateItem("missing", ItemTitle, "ignored"))
	assert.Len(t, b.Items(), 1)
}

func TestAdjustQuantityNeverBelowOne(t *testing.T) {
	b := newTestBuilder(nil)
	b.AddFromCatalog(terrace)
	b.AdjustQuantity("a1", 3)
	assert.Equal(t, 4, b.Items()[0].Quantity)
	b.AdjustQuantity("a1", -10)
	assert.Equal(t, 1, b.Items()[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	b := newTestBuilder(nil)
	b.AddFromCatalog(terrace)
	manual := b.AddManual()
	b.RemoveItem("a1")
	items := b.Items()
	require.Len(t, items, 1)
	assert.Equal(t, manual, items[0].ID)
	b.RemoveItem("missing")
	assert.Len(t, b.Items(), 1)
}

func TestDateDerivationIsOneDirectional(t *testing.T) {
	b := newTestBuilder(nil)
	b.SetDate(NewDate(2025, time.March, 31))
	assert.Equal(t, "30-04-2025", b.Draft().ValidUntil.String())

	b.SetValidUntil(NewDate(2025, time.June, 1))
	d := b.Draft()
	assert.Equal(t, "31-03-2025", d.Date.String())
	assert.Equal(t, "01-06-2025", d.ValidUntil.String())
}

func TestBuildRejectsEmptyCustomer(t *testing.T) {
	b := newTestBuilder(nil)
	b.SetCustomer(Customer{Name: "   "})
	_, err := b.Build("new-id")
	require.ErrorIs(t, err, shared.ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "customerName", verr.Field)
}

func TestBuildNewQuote(t *testing.T) {
	b := newTestBuilder(nil)
	b.SetCustomer(Customer{Name: "Jan Janssen", City: "Nijmegen"})
	b.AddFromCatalog(terrace)
	id := b.AddManual()
	require.NoError(t, b.UpdateItem(id, ItemPrice, "100"))
	b.AdjustQuantity(id, 1)

	q, err := b.Build("q-1")
	require.NoError(t, err)
	assert.Equal(t, "q-1", q.ID)
	assert.Equal(t, StatusCreated, q.Status)
	assert.Equal(t, 2118.20, q.Amount)
	assert.Equal(t, "Nijmegen", q.CustomerCity)
}

func TestBuildEditKeepsIdentity(t *testing.T) {
	base := Quote{
		ID:           "q-7",
		CustomerName: "Silke Bernhardt",
		QuoteNumber:  "#2026254",
		Status:       StatusSent,
		Date:         NewDate(2025, time.February, 8),
		Items:        []Item{{Article: terrace, Quantity: 1}},
	}
	b := newTestBuilder(&base)
	d := b.Draft()
	assert.Equal(t, "2026254", d.QuoteNumber)
	assert.Equal(t, "08-03-2025", d.ValidUntil.String())
	assert.Equal(t, DefaultSlogan, d.Slogan)

	b.AddFromCatalog(terrace)
	q, err := b.Build("ignored")
	require.NoError(t, err)
	assert.Equal(t, "q-7", q.ID)
	assert.Equal(t, StatusSent, q.Status)
	assert.Equal(t, 3760.40, q.Amount)

	assert.Equal(t, 1, base.Items[0].Quantity)
}
