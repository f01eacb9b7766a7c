package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	supabase "github.com/supabase-community/supabase-go"

	"votetopics/pkg/domain"
)

// SupabaseConfig holds configuration required to reach a Supabase project.
type SupabaseConfig struct {
	// SupabaseURL is the project URL, e.g. "https://[project-ref].supabase.co".
	SupabaseURL string

	// SupabaseKey must be the service_role key: the pipeline deletes and inserts
	// rows regardless of row-level security.
	SupabaseKey string

	Table string

	// PageSize bounds each ListTopics request. Defaults to 1000, the
	// PostgREST max-rows default.
	PageSize int
}

const defaultSupabasePageSize = 1000

// SupabaseClient talks to the project's REST API through the Supabase SDK.
//
// postgrest-go has no context support, so ctx arguments only gate the call.
type SupabaseClient struct {
	supabaseSDK *supabase.Client
	cfg         SupabaseConfig
}

// NewSupabaseClient constructs a Supabase client. Call Connect before use.
func NewSupabaseClient(cfg SupabaseConfig) *SupabaseClient {
	if cfg.Table == "" {
		cfg.Table = "voting_topics"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultSupabasePageSize
	}
	return &SupabaseClient{cfg: cfg}
}

// Connect initializes the SDK client.
func (c *SupabaseClient) Connect(ctx context.Context) error {
	if c.cfg.SupabaseURL == "" || c.cfg.SupabaseKey == "" {
		return fmt.Errorf("supabase URL and key must be provided")
	}
	sdkClient, err := supabase.NewClient(strings.TrimRight(c.cfg.SupabaseURL, "/"), c.cfg.SupabaseKey, nil)
	if err != nil {
		return fmt.Errorf("initialize supabase SDK: %w", err)
	}
	c.supabaseSDK = sdkClient
	return nil
}

// SDK returns the Supabase SDK client, nil before Connect.
func (c *SupabaseClient) SDK() *supabase.Client {
	return c.supabaseSDK
}

// supabaseTopicRow is the insert payload. total_votes is left to the column default.
type supabaseTopicRow struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	Category    string    `json:"category"`
	NewsURL     string    `json:"news_url"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// supabaseCopyRow is the replication payload, vote count included.
type supabaseCopyRow struct {
	supabaseTopicRow
	TotalVotes int64 `json:"total_votes"`
}

func newSupabaseTopicRow(t domain.Topic) supabaseTopicRow {
	return supabaseTopicRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Source:      t.Source,
		Category:    t.Category,
		NewsURL:     t.NewsURL,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (c *SupabaseClient) ready(ctx context.Context) error {
	if c.supabaseSDK == nil {
		return ErrNotConnected
	}
	return ctx.Err()
}

// FindByTitle reports whether a row with this exact title exists.
func (c *SupabaseClient) FindByTitle(ctx context.Context, title string) (bool, error) {
	if err := c.ready(ctx); err != nil {
		return false, err
	}
	body, _, err := c.supabaseSDK.From(c.cfg.Table).
		Select("id", "", false).
		Eq("title", title).
		Execute()
	if err != nil {
		return false, fmt.Errorf("find topic by title: %w", err)
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return false, fmt.Errorf("decode topics: %w", err)
	}
	return len(rows) > 0, nil
}

// DeleteStale deletes rows matching sig and returns the exact count.
func (c *SupabaseClient) DeleteStale(ctx context.Context, sig StaleSignature) (int64, error) {
	if sig.Empty() {
		return 0, nil
	}
	if err := c.ready(ctx); err != nil {
		return 0, err
	}
	_, count, err := c.supabaseSDK.From(c.cfg.Table).
		Delete("minimal", "exact").
		Or(orILikeFilter(sig), "").
		Execute()
	if err != nil {
		return 0, fmt.Errorf("delete stale topics: %w", err)
	}
	return count, nil
}

// orILikeFilter renders sig as a PostgREST or=() filter body. Values are
// double-quoted so spaces and punctuation inside patterns survive.
func orILikeFilter(sig StaleSignature) string {
	parts := make([]string, 0, len(sig.TitlePatterns)+len(sig.DescriptionPatterns))
	quote := func(p string) string {
		return `"` + strings.ReplaceAll(p, `"`, `\"`) + `"`
	}
	for _, p := range sig.TitlePatterns {
		parts = append(parts, "title.ilike."+quote(p))
	}
	for _, p := range sig.DescriptionPatterns {
		parts = append(parts, "description.ilike."+quote(p))
	}
	return strings.Join(parts, ",")
}

// InsertBatch inserts all topics in a single request.
func (c *SupabaseClient) InsertBatch(ctx context.Context, topics []domain.Topic) (int, error) {
	if len(topics) == 0 {
		return 0, nil
	}
	if err := c.ready(ctx); err != nil {
		return 0, err
	}

	rows := make([]supabaseTopicRow, len(topics))
	for i, t := range topics {
		rows[i] = newSupabaseTopicRow(t)
	}

	if _, _, err := c.supabaseSDK.From(c.cfg.Table).Insert(rows, false, "", "minimal", "").Execute(); err != nil {
		return 0, fmt.Errorf("insert topics: %w", err)
	}
	return len(rows), nil
}

// CopyBatch inserts all topics in a single request, total_votes included.
func (c *SupabaseClient) CopyBatch(ctx context.Context, topics []domain.Topic) (int, error) {
	if len(topics) == 0 {
		return 0, nil
	}
	if err := c.ready(ctx); err != nil {
		return 0, err
	}

	rows := make([]supabaseCopyRow, len(topics))
	for i, t := range topics {
		rows[i] = supabaseCopyRow{supabaseTopicRow: newSupabaseTopicRow(t), TotalVotes: t.TotalVotes}
	}

	if _, _, err := c.supabaseSDK.From(c.cfg.Table).Insert(rows, false, "", "minimal", "").Execute(); err != nil {
		return 0, fmt.Errorf("copy topics: %w", err)
	}
	return len(rows), nil
}

// ListTopics reads every row ordered by creation time, one page at a time
// until a short page comes back.
func (c *SupabaseClient) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	var topics []domain.Topic
	for from := 0; ; from += c.cfg.PageSize {
		if err := c.ready(ctx); err != nil {
			return nil, err
		}
		var page []domain.Topic
		_, err := c.supabaseSDK.From(c.cfg.Table).
			Select("*", "", false).
			Order("created_at", nil).
			Range(from, from+c.cfg.PageSize-1, "").
			ExecuteTo(&page)
		if err != nil {
			return nil, fmt.Errorf("list topics from offset %d: %w", from, err)
		}
		topics = append(topics, page...)
		if len(page) < c.cfg.PageSize {
			return topics, nil
		}
	}
}

// Ping issues a HEAD select against the table.
func (c *SupabaseClient) Ping(ctx context.Context) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if _, _, err := c.supabaseSDK.From(c.cfg.Table).Select("id", "", true).Execute(); err != nil {
		return fmt.Errorf("ping supabase: %w", err)
	}
	return nil
}

// Close is a no-op; the SDK holds no pooled connections.
func (c *SupabaseClient) Close(context.Context) error {
	return nil
}
