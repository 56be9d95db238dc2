package quotes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryUpsertPrependsOrReplaces(t *testing.T) {
	r := NewRepository([]Quote{{ID: "1", CustomerName: "Tim"}})
	r.Upsert(Quote{ID: "2", CustomerName: "Daniel"})
	r.Upsert(Quote{ID: "1", CustomerName: "Tim Müller"})

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "2", all[0].ID)
	assert.Equal(t, "Tim Müller", all[1].CustomerName)
}

func TestRepositoryListFilter(t *testing.T) {
	r := NewRepository([]Quote{
		{ID: "1", Status: StatusCreated},
		{ID: "2", Status: StatusSent},
		{ID: "3", Status: StatusSent},
	})
	sent := StatusSent
	got := r.List(&sent)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
	assert.Len(t, r.List(nil), 3)

	accepted := StatusAccepted
	assert.Empty(t, r.List(&accepted))
}

func TestRepositoryRemoveAndSetStatus(t *testing.T) {
	r := NewRepository([]Quote{{ID: "1"}, {ID: "2"}, {ID: "3"}})
	assert.True(t, r.Remove("2"))
	assert.False(t, r.Remove("2"))
	ids := []string{}
	for _, q := range r.All() {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []string{"1", "3"}, ids)

	assert.True(t, r.SetStatus("3", StatusAccepted))
	assert.False(t, r.SetStatus("missing", StatusAccepted))
	q, ok := r.Get("3")
	require.True(t, ok)
	assert.Equal(t, StatusAccepted, q.Status)

	assert.True(t, r.SetStatus("3", StatusCreated))
	q, _ = r.Get("3")
	assert.Equal(t, StatusCreated, q.Status)
}

func TestRepositoryStats(t *testing.T) {
	r := NewRepository([]Quote{
		{ID: "1", Status: StatusCreated, Amount: 30110},
		{ID: "2", Status: StatusSent, Amount: 8986.10},
		{ID: "3", Status: StatusAccepted, Amount: 18604.20},
		{ID: "4", Status: StatusSent, Amount: 0.10},
	})
	stats := r.Stats()
	assert.Equal(t, 4, stats.Count)
	assert.Equal(t, 57700.40, stats.TotalValue)
	assert.Equal(t, 8986.20, stats.SentValue)
	assert.Equal(t, 18604.20, stats.AcceptedValue)
}

func TestRepositoryReturnsCopies(t *testing.T) {
	r := NewRepository([]Quote{{ID: "1", Items: []Item{item("a", 1, 1)}}})
	q, _ := r.Get("1")
	q.Items[0].Quantity = 99
	again, _ := r.Get("1")
	assert.Equal(t, 1, again.Items[0].Quantity)
}
