package replication

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votetopics/pkg/db"
	"votetopics/pkg/domain"
)

func makeTopics(n int) []domain.Topic {
	out := make([]domain.Topic, n)
	for i := range out {
		out[i] = domain.Topic{ID: fmt.Sprintf("id-%d", i), Title: fmt.Sprintf("Faut-il %d ?", i)}
	}
	return out
}

func TestNewReplicatorRequiresStores(t *testing.T) {
	_, err := NewReplicator(Config{Target: db.NewMemoryStore()})
	assert.Error(t, err)
	_, err = NewReplicator(Config{Source: db.NewMemoryStore()})
	assert.Error(t, err)
}

func TestReplicateSkipsExistingTitles(t *testing.T) {
	all := makeTopics(250)
	source := db.NewMemoryStore(append(all, domain.Topic{ID: "dup", Title: all[0].Title})...)
	target := db.NewMemoryStore(all[:10]...)

	r, err := NewReplicator(Config{Source: source, Target: target, BatchSize: 40, Workers: 3, Logger: zerolog.Nop()})
	require.NoError(t, err)

	stats, err := r.Replicate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 250, stats.Processed)
	assert.Equal(t, 240, stats.Inserted)
	assert.Equal(t, 10, stats.Skipped)
	assert.Len(t, target.Topics(), 250)

	stats, err = r.Replicate(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Inserted, "second replication is a no-op")
}

func TestReplicateKeepsVoteCounts(t *testing.T) {
	src := makeTopics(3)
	src[0].TotalVotes = 42
	src[2].TotalVotes = 7
	target := db.NewMemoryStore()

	r, err := NewReplicator(Config{Source: db.NewMemoryStore(src...), Target: target, BatchSize: 2, Workers: 1, Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = r.Replicate(context.Background())
	require.NoError(t, err)

	votes := map[string]int64{}
	for _, topic := range target.Topics() {
		votes[topic.ID] = topic.TotalVotes
	}
	assert.Equal(t, map[string]int64{"id-0": 42, "id-1": 0, "id-2": 7}, votes)
}

type failingTarget struct {
	*db.MemoryStore
}

func (failingTarget) CopyBatch(context.Context, []domain.Topic) (int, error) {
	return 0, errors.New("disk full")
}

func TestReplicateReturnsCopyErrors(t *testing.T) {
	r, err := NewReplicator(Config{
		Source: db.NewMemoryStore(makeTopics(5)...),
		Target: failingTarget{db.NewMemoryStore()},
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	_, err = r.Replicate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
