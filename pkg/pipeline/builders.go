package pipeline

import (
	"github.com/rs/zerolog"

	"votetopics/pkg/classify"
	"votetopics/pkg/config"
	"votetopics/pkg/content"
	"votetopics/pkg/db"
	"votetopics/pkg/facts"
	"votetopics/pkg/feed"
	"votetopics/pkg/httpclient"
	"votetopics/pkg/logging"
	"votetopics/pkg/rewrite"
)

// Dependencies are the runtime collaborators of a configured pipeline.
// Cache and Publisher are optional and must be left nil when disabled.
type Dependencies struct {
	Store     db.TopicStore
	Cache     content.ArticleCache
	Publisher TopicPublisher
	Logger    zerolog.Logger
}

// FromConfig builds the default stages from cfg.
// Pipeline: Sources → [Feed Fetcher] → [Item Extractor] → [Enricher] → [Classifier] → [Rewriter] → Store
func FromConfig(cfg config.Config, deps Dependencies) *Pipeline {
	client := httpclient.NewClient(httpclient.BrowserClient, httpclient.Options{
		Timeout:      cfg.HTTP.Timeout,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	})

	stages := Stages{
		Fetcher: feed.NewFetcher(client),
		Extractor: feed.NewExtractor(feed.ExtractorOptions{
			MaxItems:         cfg.Pipeline.MaxItemsPerSource,
			MinTitleLength:   cfg.Pipeline.MinTitleLength,
			DescriptionLimit: cfg.Pipeline.DescriptionLimit,
			TitleBlocklist:   cfg.Rules.TitleBlocklist,
		}),
		Enricher: content.NewEnricher(client, logging.Component(deps.Logger, "enricher"), content.EnricherOptions{
			Limit:       cfg.Pipeline.ContentLimit,
			Readability: cfg.Enricher.ReadabilityFallback,
			Cache:       deps.Cache,
		}),
		Classifier: classify.New(cfg.Rules, facts.NewExtractor(cfg.Pipeline.MaxFacts), cfg.Pipeline.MinFacts),
		Rewriter:   rewrite.New(cfg.Rules, rewrite.DefaultTemplates()),
	}

	return NewPipeline(cfg.Sources, stages, deps.Store, Options{
		Sweep: db.StaleSignature{
			TitlePatterns:       cfg.Sweep.TitlePatterns,
			DescriptionPatterns: cfg.Sweep.DescriptionPatterns,
		},
		RunBudget: cfg.Pipeline.RunBudget,
		Publisher: deps.Publisher,
		Logger:    deps.Logger,
	})
}
