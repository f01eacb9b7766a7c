package feed

import (
	"context"
	"fmt"

	"votetopics/pkg/domain"
	"votetopics/pkg/httpclient"
)

// Getter retrieves a document body. *httpclient.HTTPClient satisfies it.
type Getter interface {
	GetText(ctx context.Context, url string) (string, error)
}

// Fetcher downloads a source's raw feed document.
type Fetcher struct {
	client Getter
}

// NewFetcher creates a fetcher. A nil client gets a browser-header client with default bounds.
func NewFetcher(client Getter) *Fetcher {
	if client == nil {
		client = httpclient.NewClient(httpclient.BrowserClient, httpclient.Options{})
	}
	return &Fetcher{client: client}
}

// Fetch returns the feed document of src. No retries.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Source) (string, error) {
	body, err := f.client.GetText(ctx, src.FeedURL)
	if err != nil {
		return "", fmt.Errorf("fetch feed %s: %w", src.Name, err)
	}
	return body, nil
}
