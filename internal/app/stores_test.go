package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verandameister/quotedesk/internal/store"
)

func TestOpenStoresLocalOnly(t *testing.T) {
	ctx := context.Background()
	cfg := &Config{LocalDBPath: filepath.Join(t.TempDir(), "local.db"), StoreRemoteTimeout: time.Second}

	s, err := OpenStores(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	assert.Nil(t, s.Pool)
	assert.Equal(t, store.ModeLocal, s.Fallback.Mode(ctx))
}

func TestOpenStoresUnreachableRemoteMarksPending(t *testing.T) {
	ctx := context.Background()
	cfg := &Config{
		LocalDBPath:        filepath.Join(t.TempDir(), "local.db"),
		PGDSN:              "postgres://vm:vm@127.0.0.1:1/vm?sslmode=disable&connect_timeout=1",
		StoreRemoteTimeout: 2 * time.Second,
	}

	s, err := OpenStores(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	require.NotNil(t, s.Pool)
	pending, err := s.Local.Pending(ctx)
	require.NoError(t, err)
	assert.True(t, pending)
	assert.Equal(t, store.ModeDegraded, s.Fallback.Mode(ctx))

	// Reads stay on the cache while pending, so nothing dials the remote.
	list, err := s.Fallback.FetchQuotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
