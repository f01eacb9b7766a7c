package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"votetopics/pkg/classify"
	"votetopics/pkg/db"
	"votetopics/pkg/domain"
	"votetopics/pkg/logging"
)

// FeedFetcher downloads the raw feed document of a source.
type FeedFetcher interface {
	Fetch(ctx context.Context, src domain.Source) (string, error)
}

// ItemExtractor turns a raw feed document into filtered, capped items.
type ItemExtractor interface {
	Extract(raw string) []domain.RawItem
}

// ArticleEnricher fetches the article body behind an item.
// ok is false when the caller should fall back to the feed description.
type ArticleEnricher interface {
	Enrich(ctx context.Context, articleURL string) (text string, ok bool)
}

// TopicClassifier runs the evidence, debatable and freshness gates.
type TopicClassifier interface {
	Classify(item domain.EnrichedItem) classify.Verdict
}

// TopicRewriter produces the stored title, summary and category.
type TopicRewriter interface {
	Title(title string) string
	Summary(text string, facts []domain.Fact) string
	Category(title, def string) string
}

// TopicPublisher announces persisted topics.
type TopicPublisher interface {
	PublishCreated(ctx context.Context, topics []domain.Topic) error
}

// Stages groups the per-item processing steps.
type Stages struct {
	Fetcher    FeedFetcher
	Extractor  ItemExtractor
	Enricher   ArticleEnricher
	Classifier TopicClassifier
	Rewriter   TopicRewriter
}

// Options tunes a Pipeline. Zero values are usable.
type Options struct {
	Sweep     db.StaleSignature
	RunBudget time.Duration
	Publisher TopicPublisher
	Logger    zerolog.Logger
	Now       func() time.Time
	NewID     func() string
}

// Stats counts what happened to items during one run.
type Stats struct {
	Sources        int
	SourceFailures int
	Items          int
	Enriched       int
	Rejected       int
	Duplicates     int
	Swept          int64
	Inserted       int
}

// Result is what a run reports to its trigger.
type Result struct {
	Processed int
	Message   string
	Stats     Stats
}

// Pipeline runs sources sequentially through the stages and persists the
// accepted topics at the end of the run.
type Pipeline struct {
	sources []domain.Source
	stages  Stages
	store   db.TopicStore
	opts    Options
	log     zerolog.Logger
}

// NewPipeline creates a pipeline over sources writing to store.
func NewPipeline(sources []domain.Source, stages Stages, store db.TopicStore, opts Options) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Pipeline{
		sources: sources,
		stages:  stages,
		store:   store,
		opts:    opts,
		log:     logging.Component(opts.Logger, "pipeline"),
	}
}

// ResultMessage renders the trigger message for n new topics.
func ResultMessage(n int) string {
	return fmt.Sprintf("Traité %d nouveaux sujets avec données chiffrées d'actualité", n)
}

// Run executes one ingestion run.
//
// Network stages share the run budget; storage uses ctx so an exhausted
// budget still persists what was gathered. Only storage errors are returned.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	if p.store == nil {
		return Result{}, errors.New("pipeline has no topic store")
	}
	started := p.opts.Now()
	var stats Stats

	fetchCtx := ctx
	if p.opts.RunBudget > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.opts.RunBudget)
		defer cancel()
	}

	p.log.Info().Int("sources", len(p.sources)).Msg("starting run")

	var candidates []candidate
	for _, src := range p.sources {
		if err := fetchCtx.Err(); err != nil {
			p.log.Warn().Err(err).Str("source", src.Name).Msg("run budget exhausted, skipping remaining sources")
			break
		}
		stats.Sources++
		found, ok := p.processSource(fetchCtx, src, &stats)
		if !ok {
			stats.SourceFailures++
			continue
		}
		candidates = append(candidates, found...)
	}

	topics, err := p.dedup(ctx, candidates, &stats)
	if err != nil {
		return Result{Stats: stats}, err
	}

	swept, err := p.store.DeleteStale(ctx, p.opts.Sweep)
	if err != nil {
		p.log.Error().Err(err).Msg("stale topic sweep failed")
	} else {
		stats.Swept = swept
		p.log.Info().Int64("deleted", swept).Msg("stale topics swept")
	}

	if len(topics) > 0 {
		n, err := p.store.InsertBatch(ctx, topics)
		if err != nil {
			return Result{Stats: stats}, fmt.Errorf("persist topics: %w", err)
		}
		stats.Inserted = n
		for _, c := range topics {
			p.log.Debug().Str("title", c.Title).Str("state", string(domain.StatePersisted)).Msg("item transition")
		}
		p.publish(ctx, topics)
	}

	p.log.Info().
		Int("processed", len(topics)).
		Int("items", stats.Items).
		Int("rejected", stats.Rejected).
		Int("duplicates", stats.Duplicates).
		Int("source_failures", stats.SourceFailures).
		Dur("took", p.opts.Now().Sub(started)).
		Msg(ResultMessage(len(topics)))

	return Result{Processed: len(topics), Message: ResultMessage(len(topics)), Stats: stats}, nil
}

type candidate struct {
	topic domain.Topic
	trace *itemTrace
}

// processSource returns the accepted, rewritten candidates of one source.
// ok is false when the feed could not be fetched.
func (p *Pipeline) processSource(ctx context.Context, src domain.Source, stats *Stats) ([]candidate, bool) {
	log := p.log.With().Str("source", src.Name).Logger()

	raw, err := p.stages.Fetcher.Fetch(ctx, src)
	if err != nil {
		log.Error().Err(err).Msg("feed fetch failed, skipping source")
		return nil, false
	}
	log.Debug().Int("bytes", len(raw)).Msg("feed fetched")

	items := p.stages.Extractor.Extract(raw)
	log.Info().Int("items", len(items)).Msg("items extracted")

	var out []candidate
	for _, item := range items {
		stats.Items++
		trace := newItemTrace(log, item.Title)
		trace.advance(domain.StateExtracted)

		if c, ok := p.processItem(ctx, src, item, trace, stats); ok {
			out = append(out, c)
		}
	}
	return out, true
}

func (p *Pipeline) processItem(ctx context.Context, src domain.Source, item domain.RawItem, trace *itemTrace, stats *Stats) (candidate, bool) {
	enriched := domain.EnrichedItem{RawItem: item, FullText: item.Description}
	if text, ok := p.stages.Enricher.Enrich(ctx, item.ArticleURL); ok {
		enriched.FullText = text
		enriched.Enriched = true
		stats.Enriched++
	} else {
		trace.log.Debug().Str("url", item.ArticleURL).Msg("using feed description")
	}
	trace.advance(domain.StateEnriched)

	verdict := p.stages.Classifier.Classify(enriched)
	if verdict.RejectedAt == classify.GateEvidence {
		stats.Rejected++
		trace.reject(verdict)
		return candidate{}, false
	}
	trace.advance(domain.StateEvidenced)
	if !verdict.Accepted {
		stats.Rejected++
		trace.reject(verdict)
		return candidate{}, false
	}
	trace.advance(domain.StateClassified)

	now := p.opts.Now().UTC()
	title := p.stages.Rewriter.Title(item.Title)
	topic := domain.Topic{
		ID:          p.opts.NewID(),
		Title:       title,
		Description: p.stages.Rewriter.Summary(enriched.FullText, verdict.Facts),
		Source:      src.Name,
		Category:    p.stages.Rewriter.Category(item.Title, src.Category),
		NewsURL:     item.ArticleURL,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	trace.retitle(title)
	trace.advance(domain.StateRewritten)
	return candidate{topic: topic, trace: trace}, true
}

// dedup drops candidates whose title was already seen in this run or exists in storage.
func (p *Pipeline) dedup(ctx context.Context, candidates []candidate, stats *Stats) ([]domain.Topic, error) {
	seen := make(map[string]struct{}, len(candidates))
	topics := make([]domain.Topic, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.topic.Title]; dup {
			stats.Duplicates++
			c.trace.advance(domain.StateDeduplicated)
			continue
		}
		seen[c.topic.Title] = struct{}{}

		exists, err := p.store.FindByTitle(ctx, c.topic.Title)
		if err != nil {
			return nil, fmt.Errorf("check existing topic: %w", err)
		}
		if exists {
			stats.Duplicates++
			c.trace.advance(domain.StateDeduplicated)
			continue
		}
		topics = append(topics, c.topic)
	}
	return topics, nil
}

func (p *Pipeline) publish(ctx context.Context, topics []domain.Topic) {
	if p.opts.Publisher == nil {
		return
	}
	if err := p.opts.Publisher.PublishCreated(ctx, topics); err != nil {
		p.log.Error().Err(err).Int("topics", len(topics)).Msg("publishing topic events failed")
		return
	}
	p.log.Debug().Int("topics", len(topics)).Msg("topic events published")
}
