package domain

import "time"

// Source is a configured news outlet feed.
type Source struct {
	Name     string `yaml:"name"`
	FeedURL  string `yaml:"url"`
	Category string `yaml:"category"`
}

// RawItem is a single <item> taken from a feed, before any enrichment.
type RawItem struct {
	Title       string
	Description string
	ArticleURL  string
}

// EnrichedItem carries the best text we could get for an item.
// FullText is the article body when it was fetched, otherwise the RSS description.
type EnrichedItem struct {
	RawItem
	FullText string
	Enriched bool
}

// Text returns title and body joined, which is what every heuristic scans.
func (e EnrichedItem) Text() string {
	return e.Title + " " + e.FullText
}

// Fact is one quantitative datum found in text. Raw is the matched substring, verbatim.
type Fact struct {
	Label string
	Raw   string
}

// String renders the fact the way it is shown in summaries.
func (f Fact) String() string {
	return f.Label + " : " + f.Raw
}

// Topic represents a votable policy question persisted in the voting_topics table.
//
// TotalVotes belongs to the vote-casting service; the ingestion pipeline never writes it.
type Topic struct {
	ID          string    `json:"id" bson:"id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Source      string    `json:"source" bson:"source"`
	Category    string    `json:"category" bson:"category"`
	NewsURL     string    `json:"news_url" bson:"news_url"`
	IsActive    bool      `json:"is_active" bson:"is_active"`
	TotalVotes  int64     `json:"total_votes" bson:"total_votes,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
