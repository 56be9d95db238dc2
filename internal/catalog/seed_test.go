package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedMatchesStarterCatalog(t *testing.T) {
	seed, err := Seed()
	require.NoError(t, err)
	require.Len(t, seed, 7)

	names := make([]string, 0, len(seed))
	for _, m := range seed {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{
		"VERANDA POLYCARBONAAT", "GLAZENSCHUIFWAND VOOR", "KEIL",
		"SONNENSCHUTZ", "EXTRAS", "SCHIEBETUR", "ZIJWAND",
	}, names)

	require.Len(t, seed[0].SubCategories, 5)
	a1, ok := seed.FindArticle("a1")
	require.True(t, ok)
	assert.Equal(t, 1580.0, a1.Price)
	assert.Equal(t, "Premium Aluminium Terrassenüberdachung 300 × 200", a1.Title)
	assert.Contains(t, a1.Details, "- Pulverbeschichtung: Anthrazit (RAL 7016), 80M-Qualität\n")

	a2, ok := seed.FindArticle("a2")
	require.True(t, ok)
	assert.Equal(t, 1930.0, a2.Price)
}

func TestSeedEncodesEmptyArrays(t *testing.T) {
	seed, err := Seed()
	require.NoError(t, err)
	raw, err := json.Marshal(seed[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"2","name":"GLAZENSCHUIFWAND VOOR","subCategories":[]}`, string(raw))
}

func TestParseYAMLRejectsGarbage(t *testing.T) {
	_, err := ParseYAML([]byte("- id: [unterminated"))
	require.Error(t, err)
}
