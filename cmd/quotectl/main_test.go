package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verandameister/quotedesk/internal/quotes"
	"github.com/verandameister/quotedesk/internal/shared"
	_ "github.com/verandameister/quotedesk/testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOCAL_DB_PATH", "file:"+t.Name()+"?mode=memory&cache=shared")
	t.Setenv("PG_DSN", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"-q"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestNextNumberOnEmptyStore(t *testing.T) {
	out, err := run(t, "next-number")
	require.NoError(t, err)
	assert.Equal(t, quotes.SeedNumber, strings.TrimSpace(out))
}

func TestSeedCatalog(t *testing.T) {
	out, err := run(t, "seed-catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "stored ")
	assert.Contains(t, out, " articles")
}

func TestRenderUnknownQuote(t *testing.T) {
	_, err := run(t, "render", "missing", "-o", t.TempDir()+"/out.pdf")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRenderNeedsID(t *testing.T) {
	_, err := run(t, "render")
	assert.Error(t, err)
}

func TestMigrateNeedsDSN(t *testing.T) {
	_, err := run(t, "migrate")
	assert.EqualError(t, err, "PG_DSN is not set")
}

func TestJobsTriggerRejectsUnknownTask(t *testing.T) {
	_, err := run(t, "jobs", "trigger", "mail:send")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown task")
}
