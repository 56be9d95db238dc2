package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verandameister/quotedesk/internal/platform/db"
	"github.com/verandameister/quotedesk/internal/quotes"
)

// TestRemoteRoundTrip needs a disposable database in QUOTEDESK_TEST_PG_DSN.
func TestRemoteRoundTrip(t *testing.T) {
	dsn := os.Getenv("QUOTEDESK_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("QUOTEDESK_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	_, err := db.Migrate(dsn)
	require.NoError(t, err)

	pool, err := db.New(ctx, dsn, 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	remote := NewRemote(pool)
	require.NoError(t, remote.ReplaceQuotes(ctx, nil))

	first := sampleQuote("q1", "2026262")
	second := sampleQuote("q2", "2026263")
	require.NoError(t, remote.SaveQuote(ctx, first))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, remote.SaveQuote(ctx, second))
	require.NoError(t, remote.UpdateQuoteStatus(ctx, "q1", quotes.StatusSent))

	list, err := remote.FetchQuotes(ctx)
	require.NoError(t, err)
	first.Status = quotes.StatusSent
	if diff := cmp.Diff([]quotes.Quote{second, first}, list); diff != "" {
		t.Fatalf("quotes mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, remote.DeleteQuote(ctx, "q2"))
	list, err = remote.FetchQuotes(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, remote.SaveCatalog(ctx, sampleCatalog()))
	tree, err := remote.FetchCatalog(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleCatalog(), tree); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}
}
