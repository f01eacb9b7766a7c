package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votetopics/pkg/classify"
	"votetopics/pkg/config"
	"votetopics/pkg/db"
	"votetopics/pkg/domain"
	"votetopics/pkg/facts"
	"votetopics/pkg/rewrite"
)

const pensionArticle = `<html><body><nav>Menu</nav><article><h1>Retraites</h1>
<p>Le texte prévoit une augmentation de 2 ans de l'âge légal pour un coût de 5 milliards d'euros.</p>
<p>Les syndicats dénoncent une mesure injuste pour 300000 retraités.</p></article></body></html>`

func rssFeed(base string) string {
	item := func(title, path, desc string) string {
		return fmt.Sprintf(`<item><title><![CDATA[%s]]></title><link>%s%s</link><description><![CDATA[%s]]></description></item>`, title, base, path, desc)
	}
	return `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Politique</title>` +
		item("Le gouvernement relance la réforme du système de retraite", "/retraites", "Le gouvernement présente son texte.") +
		item("Accident mortel sur l'autoroute A6 ce matin", "/accident", "Une hausse de 12 % des accidents, 3 millions d'euros de dégâts.") +
		item("Budget 2024 : le projet de loi de finances adopté", "/budget", "Une baisse de 3 % et 10 milliards d'euros d'économies.") +
		item("Court titre", "/court", "Une réforme à 5 % pour 2 milliards d'euros.") +
		`</channel></rss>`
}

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed.xml":
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(rssFeed(server.URL)))
		case "/retraites":
			_, _ = w.Write([]byte(pensionArticle))
		case "/broken.xml":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(sources ...domain.Source) config.Config {
	cfg := config.Default()
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.Sources = sources
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	server := newFeedServer(t)
	store := db.NewMemoryStore(
		domain.Topic{ID: "old", Title: "Budget 2024 : faut-il voter le texte ?"},
	)
	publisher := &fakePublisher{}

	cfg := testConfig(
		domain.Source{Name: "Broken", FeedURL: server.URL + "/broken.xml", Category: "Politique"},
		domain.Source{Name: "Le Monde", FeedURL: server.URL + "/feed.xml", Category: "Politique"},
	)
	p := FromConfig(cfg, Dependencies{Store: store, Publisher: publisher, Logger: zerolog.Nop()})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, "Traité 1 nouveaux sujets avec données chiffrées d'actualité", res.Message)
	assert.Equal(t, 1, res.Stats.SourceFailures)
	assert.Equal(t, 3, res.Stats.Items, "short titles are dropped before enrichment")
	assert.Equal(t, 2, res.Stats.Rejected)
	assert.Equal(t, int64(1), res.Stats.Swept)

	topics := store.Topics()
	require.Len(t, topics, 1)
	topic := topics[0]
	assert.Equal(t, rewrite.PensionQuestion+" Le gouvernement relance la réforme du système de retraite", topic.Title)
	assert.Equal(t, "Le Monde", topic.Source)
	assert.Equal(t, "Politique", topic.Category, "categorized from the source headline")
	assert.Equal(t, server.URL+"/retraites", topic.NewsURL)
	assert.True(t, topic.IsActive)
	assert.Zero(t, topic.TotalVotes)
	assert.Len(t, topic.ID, 36)
	assert.True(t, strings.HasPrefix(topic.Description, "CONTEXTE: "))
	assert.GreaterOrEqual(t, len(facts.Extract(topic.Title, topic.Description)), facts.MinFacts,
		"stored summary keeps its evidence")

	require.Len(t, publisher.published, 1)
	assert.Equal(t, topic.ID, publisher.published[0].ID)

	res, err = p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Processed, "second run inserts nothing")
	assert.Equal(t, 1, res.Stats.Duplicates)
	assert.Len(t, store.Topics(), 1)
}

type fakeFetcher struct {
	feeds map[string]string
}

func (f *fakeFetcher) Fetch(_ context.Context, src domain.Source) (string, error) {
	raw, ok := f.feeds[src.Name]
	if !ok {
		return "", fmt.Errorf("fetch feed %s: unreachable", src.FeedURL)
	}
	return raw, nil
}

// fakeExtractor emits one item per line of the raw document.
type fakeExtractor struct{}

func (fakeExtractor) Extract(raw string) []domain.RawItem {
	var items []domain.RawItem
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, domain.RawItem{Title: line, Description: "desc " + line, ArticleURL: "https://example.fr/" + line})
		}
	}
	return items
}

type fakeEnricher struct {
	calls []string
}

func (f *fakeEnricher) Enrich(_ context.Context, articleURL string) (string, bool) {
	f.calls = append(f.calls, articleURL)
	return "", false
}

// fakeClassifier rejects titles containing "rejet".
type fakeClassifier struct{}

func (fakeClassifier) Classify(item domain.EnrichedItem) classify.Verdict {
	if strings.Contains(item.Title, "rejet") {
		return classify.Verdict{RejectedAt: classify.GateDebatable, RejectionNote: "no debatable keyword", FactCount: 2}
	}
	return classify.Verdict{Accepted: true, Debatable: true, Fresh: true, FactCount: 2, Facts: []domain.Fact{
		{Label: facts.LabelPercentage, Raw: "5 %"},
		{Label: facts.LabelAmount, Raw: "2 milliards d'euros"},
	}}
}

type fakeRewriter struct{}

func (fakeRewriter) Title(title string) string { return title + " ?" }
func (fakeRewriter) Summary(text string, _ []domain.Fact) string {
	return "CONTEXTE: " + text
}
func (fakeRewriter) Category(_ string, def string) string { return def }

type fakeStore struct {
	*db.MemoryStore
	findErr   error
	sweepErr  error
	insertErr error
}

func (s *fakeStore) FindByTitle(ctx context.Context, title string) (bool, error) {
	if s.findErr != nil {
		return false, s.findErr
	}
	return s.MemoryStore.FindByTitle(ctx, title)
}

func (s *fakeStore) DeleteStale(ctx context.Context, sig db.StaleSignature) (int64, error) {
	if s.sweepErr != nil {
		return 0, s.sweepErr
	}
	return s.MemoryStore.DeleteStale(ctx, sig)
}

func (s *fakeStore) InsertBatch(ctx context.Context, topics []domain.Topic) (int, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	return s.MemoryStore.InsertBatch(ctx, topics)
}

type fakePublisher struct {
	published []domain.Topic
	err       error
}

func (f *fakePublisher) PublishCreated(_ context.Context, topics []domain.Topic) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, topics...)
	return nil
}

func newFakePipeline(store db.TopicStore, publisher TopicPublisher, feeds map[string]string, sources ...string) *Pipeline {
	srcs := make([]domain.Source, len(sources))
	for i, name := range sources {
		srcs[i] = domain.Source{Name: name, FeedURL: "https://" + name + "/rss", Category: "Politique"}
	}
	stages := Stages{
		Fetcher:    &fakeFetcher{feeds: feeds},
		Extractor:  fakeExtractor{},
		Enricher:   &fakeEnricher{},
		Classifier: fakeClassifier{},
		Rewriter:   fakeRewriter{},
	}
	ids := 0
	return NewPipeline(srcs, stages, store, Options{
		Publisher: publisher,
		Logger:    zerolog.Nop(),
		Now:       func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
	})
}

func TestRunSkipsFailedSourcesAndDeduplicates(t *testing.T) {
	store := &fakeStore{MemoryStore: db.NewMemoryStore(domain.Topic{ID: "x", Title: "déjà vu ?"})}
	feeds := map[string]string{
		"a": "sujet un\nun rejet\ndéjà vu",
		"c": "sujet un\nsujet deux",
	}
	p := newFakePipeline(store, nil, feeds, "a", "b", "c")

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Stats.SourceFailures)
	assert.Equal(t, 1, res.Stats.Rejected)
	assert.Equal(t, 2, res.Stats.Duplicates, "one in-run repeat and one stored title")

	topics := store.Topics()
	require.Len(t, topics, 3)
	assert.Equal(t, "sujet un ?", topics[1].Title)
	assert.Equal(t, "a", topics[1].Source)
	assert.Equal(t, "id-1", topics[1].ID)
	assert.Equal(t, "sujet deux ?", topics[2].Title)
	assert.Equal(t, "CONTEXTE: desc sujet deux", topics[2].Description, "feed description is the fallback text")
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), topics[2].CreatedAt)
}

func TestRunInsertErrorFailsRun(t *testing.T) {
	store := &fakeStore{MemoryStore: db.NewMemoryStore(), insertErr: errors.New("connection reset")}
	publisher := &fakePublisher{}
	p := newFakePipeline(store, publisher, map[string]string{"a": "sujet un"}, "a")

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, publisher.published)
}

func TestRunLookupErrorFailsRun(t *testing.T) {
	store := &fakeStore{MemoryStore: db.NewMemoryStore(), findErr: errors.New("timeout")}
	p := newFakePipeline(store, nil, map[string]string{"a": "sujet un"}, "a")

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, store.Topics())
}

func TestRunToleratesSweepAndPublishErrors(t *testing.T) {
	store := &fakeStore{MemoryStore: db.NewMemoryStore(), sweepErr: errors.New("permission denied")}
	publisher := &fakePublisher{err: errors.New("broker down")}
	p := newFakePipeline(store, publisher, map[string]string{"a": "sujet un"}, "a")

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Len(t, store.Topics(), 1)
}

func TestRunWithNothingNew(t *testing.T) {
	store := &fakeStore{MemoryStore: db.NewMemoryStore()}
	p := newFakePipeline(store, nil, map[string]string{}, "a")

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Processed)
	assert.Equal(t, ResultMessage(0), res.Message)
}

func TestRunStopsFetchingWhenContextIsDone(t *testing.T) {
	store := &fakeStore{MemoryStore: db.NewMemoryStore()}
	p := newFakePipeline(store, nil, map[string]string{"a": "sujet un"}, "a")
	p.opts.RunBudget = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Stats.Sources)
	assert.Zero(t, res.Processed)
}

func TestRunWithoutStore(t *testing.T) {
	p := NewPipeline(nil, Stages{}, nil, Options{})
	_, err := p.Run(context.Background())
	assert.Error(t, err)
}
