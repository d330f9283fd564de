package article

import (
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceTypeRSS     SourceType = "rss"
	SourceTypeAPI     SourceType = "api"
	SourceTypeScraper SourceType = "scraper"
)

// Article is a single collected news article. A freshly collected article is
// "raw": Enrichment is nil. After a successful enrichment pass the article
// carries a complete Enrichment block; partial enrichment is never observable.
type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	URL         string     `json:"url"`
	SourceName  string     `json:"source_name"`
	SourceType  SourceType `json:"source_type"`
	Language    string     `json:"language"`
	Categories  []string   `json:"categories,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CollectedAt time.Time  `json:"collected_at"`

	Enrichment *Enrichment `json:"enrichment,omitempty"`
}

// Enrichment holds the analysis results for one article. All fields are
// populated together by a single enrichment pass.
type Enrichment struct {
	Sentiment      string    `json:"sentiment"`
	SentimentScore float64   `json:"sentiment_score"`
	BiasScore      float64   `json:"bias_score"`
	Summary        string    `json:"summary"`
	WordCount      int       `json:"word_count"`
	ReadingTime    int       `json:"reading_time"` // minutes
	EnrichedAt     time.Time `json:"enriched_at"`
}

func New(title, content, url, sourceName string, sourceType SourceType) *Article {
	return &Article{
		ID:          uuid.NewString(),
		Title:       title,
		Content:     content,
		URL:         url,
		SourceName:  sourceName,
		SourceType:  sourceType,
		Language:    "en",
		CollectedAt: time.Now().UTC(),
	}
}

func (a *Article) Enriched() bool {
	return a.Enrichment != nil
}
