package replication

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"votetopics/pkg/db"
	"votetopics/pkg/domain"
	"votetopics/pkg/logging"
)

const (
	defaultBatchSize = 100
	defaultWorkers   = 5
)

// Config wires the replication dependencies.
type Config struct {
	Source db.TopicLister
	Target db.TopicCopier

	BatchSize int
	Workers   int
	Logger    zerolog.Logger
}

// Stats reports what a replication run did.
type Stats struct {
	Processed int
	Inserted  int
	Skipped   int
}

// Replicator copies topics from one backend to another, e.g. Mongo to Supabase.
//
// Titles already present in the target are skipped, so re-running is safe.
type Replicator struct {
	source    db.TopicLister
	target    db.TopicCopier
	batchSize int
	workers   int
	log       zerolog.Logger
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source store is required")
	}
	if cfg.Target == nil {
		return nil, fmt.Errorf("target store is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return &Replicator{
		source:    cfg.Source,
		target:    cfg.Target,
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
		log:       logging.Component(cfg.Logger, "replication"),
	}, nil
}

// Replicate reads every source topic and inserts the ones whose title is new to the target.
func (r *Replicator) Replicate(ctx context.Context) (Stats, error) {
	topics, err := r.source.ListTopics(ctx)
	if err != nil {
		return Stats{}, err
	}
	topics = uniqueByTitle(topics)
	r.log.Info().Int("topics", len(topics)).Msg("loaded source topics, processing in batches")

	stats, err := r.processBatches(ctx, topics)
	if err != nil {
		return stats, err
	}
	r.log.Info().Int("processed", stats.Processed).Int("inserted", stats.Inserted).Int("skipped", stats.Skipped).Msg("replication complete")
	return stats, nil
}

// uniqueByTitle keeps the first topic of each title so parallel batches cannot
// insert the same title twice.
func uniqueByTitle(topics []domain.Topic) []domain.Topic {
	seen := make(map[string]struct{}, len(topics))
	out := make([]domain.Topic, 0, len(topics))
	for _, t := range topics {
		if t.Title == "" {
			continue
		}
		if _, ok := seen[t.Title]; ok {
			continue
		}
		seen[t.Title] = struct{}{}
		out = append(out, t)
	}
	return out
}

// processBatches fans batches out to workers and fails fast on the first error.
func (r *Replicator) processBatches(ctx context.Context, topics []domain.Topic) (Stats, error) {
	type batchJob struct {
		batch      []domain.Topic
		start, end int
	}
	type batchResult struct {
		processed int
		inserted  int
		err       error
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	numBatches := (len(topics) + r.batchSize - 1) / r.batchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(topics); start += r.batchSize {
		end := min(start+r.batchSize, len(topics))
		jobs <- batchJob{batch: topics[start:end], start: start, end: end}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				inserted, err := r.processBatch(ctx, job.batch, job.start, job.end)
				results <- batchResult{processed: len(job.batch), inserted: inserted, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var stats Stats
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
				cancel()
			}
			continue
		}
		stats.Processed += res.processed
		stats.Inserted += res.inserted
	}
	stats.Skipped = stats.Processed - stats.Inserted
	return stats, firstErr
}

// processBatch drops titles the target already has and copies the rest, vote counts included.
func (r *Replicator) processBatch(ctx context.Context, batch []domain.Topic, start, end int) (int, error) {
	toInsert := make([]domain.Topic, 0, len(batch))
	for _, t := range batch {
		exists, err := r.target.FindByTitle(ctx, t.Title)
		if err != nil {
			return 0, fmt.Errorf("check existing titles for batch [%d:%d]: %w", start, end, err)
		}
		if !exists {
			toInsert = append(toInsert, t)
		}
	}
	if len(toInsert) == 0 {
		r.log.Debug().Int("start", start).Int("end", end).Msg("no new topics in batch")
		return 0, nil
	}

	n, err := r.target.CopyBatch(ctx, toInsert)
	if err != nil {
		return 0, fmt.Errorf("copy batch [%d:%d]: %w", start, end, err)
	}
	r.log.Debug().Int("start", start).Int("end", end).Int("inserted", n).Msg("batch replicated")
	return n, nil
}
