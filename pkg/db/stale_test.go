package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votetopics/pkg/domain"
)

var budgetSignature = StaleSignature{
	TitlePatterns:       []string{"%budget 2024%", "%budget 24%", "%plf 2024%"},
	DescriptionPatterns: []string{"%budget 2024%"},
}

func TestILike(t *testing.T) {
	tests := []struct {
		value, pattern string
		want           bool
	}{
		{"Le Budget 2024 adopté", "%budget 2024%", true},
		{"budget 2025", "%budget 2024%", false},
		{"PLF 2024 : le vote", "%plf 2024%", true},
		{"abc", "a_c", true},
		{"abbc", "a_c", false},
		{"100% local", `100\%%`, true},
		{"1000 local", `100\%%`, false},
		{"prix (hors taxes)", "%(hors taxes)", true},
		{"ligne\nsuivante budget 2024", "%budget 2024%", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ILike(tt.value, tt.pattern), "%q ILIKE %q", tt.value, tt.pattern)
	}
}

func TestStaleSignatureMatches(t *testing.T) {
	assert.True(t, budgetSignature.Matches(domain.Topic{Title: "Faut-il voter le budget 24 ?"}))
	assert.True(t, budgetSignature.Matches(domain.Topic{Title: "Une question", Description: "CONTEXTE: Le budget 2024 a été adopté."}))
	assert.False(t, budgetSignature.Matches(domain.Topic{Title: "Le budget 2026", Description: "plf 2024 dans la description seulement"}))
	assert.True(t, StaleSignature{}.Empty())
	assert.False(t, StaleSignature{}.Matches(domain.Topic{Title: "budget 2024"}))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(
		domain.Topic{ID: "1", Title: "Budget 2024 : faut-il voter le texte ?"},
		domain.Topic{ID: "2", Title: "Faut-il réformer le système de retraites ?"},
	)

	found, err := store.FindByTitle(ctx, "Faut-il réformer le système de retraites ?")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = store.FindByTitle(ctx, "faut-il réformer le système de retraites ?")
	require.NoError(t, err)
	assert.False(t, found, "titles compare exactly")

	removed, err := store.DeleteStale(ctx, budgetSignature)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	n, err := store.InsertBatch(ctx, []domain.Topic{{ID: "3", Title: "Nouvelle question"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	topics := store.Topics()
	require.Len(t, topics, 2)
	assert.Equal(t, "2", topics[0].ID)
	assert.Equal(t, "3", topics[1].ID)
}
