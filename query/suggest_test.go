package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	names := []string{"Albert", "Alice", "Bob"}

	t.Run("prefix matches come back alphabetically", func(t *testing.T) {
		got := Suggest("Al", names, 2)
		assert.Equal(t, []string{"Albert", "Alice"}, got)
	})

	t.Run("prefix match is case-insensitive", func(t *testing.T) {
		got := Suggest("al", names, 12)
		assert.Equal(t, []string{"Albert", "Alice"}, got[:2])
	})

	t.Run("empty query yields nothing", func(t *testing.T) {
		assert.Empty(t, Suggest("", names, 12))
		assert.Empty(t, Suggest("   ", names, 12))
	})

	t.Run("fuzzy fallback finds near misses", func(t *testing.T) {
		got := Suggest("Alise", names, 12)
		assert.Contains(t, got, "Alice")
		assert.NotContains(t, got, "Bob")
	})

	t.Run("prefix results order before fuzzy ones", func(t *testing.T) {
		pool := []string{"Smith John", "Smyth", "Smith Jim"}
		got := Suggest("Smith", pool, 12)
		// Both prefix hits first (input order), then the fuzzy-only name.
		assert.Equal(t, []string{"Smith John", "Smith Jim", "Smyth"}, got)
	})

	t.Run("duplicates collapse across the two passes", func(t *testing.T) {
		got := Suggest("Alice", []string{"Alice"}, 12)
		assert.Equal(t, []string{"Alice"}, got)
	})

	t.Run("limit truncates", func(t *testing.T) {
		pool := []string{"Aa", "Ab", "Ac", "Ad"}
		got := Suggest("A", pool, 3)
		assert.Len(t, got, 3)
	})

	t.Run("no candidates at all", func(t *testing.T) {
		assert.Empty(t, Suggest("Zzzzzz", names, 12))
	})
}
