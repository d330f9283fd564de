package collector

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/mmcdole/gofeed"
	"golang.org/x/text/language"

	"github.com/newsmill/newsmill/app/article"
	"github.com/newsmill/newsmill/app/config"
	"github.com/newsmill/newsmill/app/database"
	"github.com/newsmill/newsmill/app/enrich"
)

// Collector produces raw articles from one configured source.
type Collector interface {
	Collect(ctx context.Context, source *config.SourceConfig) ([]*article.Article, error)
}

var _ Collector = (*RSSCollector)(nil)

// RSSCollector fetches RSS/Atom feeds and converts new entries into raw
// articles. Entries already collected (in-memory hash or persisted URL) are
// skipped, so repeated fetches only yield unseen articles.
type RSSCollector struct {
	httpClient *http.Client
	parser     *gofeed.Parser
	extractor  *enrich.ContentExtractor
	repo       database.Repository
	userAgent  string

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewRSSCollector creates a collector. repo may be nil; persisted-URL dedup
// is then skipped.
func NewRSSCollector(httpClient *http.Client, repo database.Repository, userAgent string) *RSSCollector {
	return &RSSCollector{
		httpClient: httpClient,
		parser:     gofeed.NewParser(),
		extractor:  enrich.NewContentExtractor(),
		repo:       repo,
		userAgent:  userAgent,
		seen:       make(map[string]struct{}),
	}
}

func (c *RSSCollector) Collect(ctx context.Context, source *config.SourceConfig) ([]*article.Article, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, source.Settings.GetTimeout())
	defer cancel()

	data, err := c.fetch(fetchCtx, source.Source.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", source.Source.Name, err)
	}

	feed, err := c.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", source.Source.Name, err)
	}

	lang := normalizeLanguage(feed.Language, source.Source.Language)

	articles := make([]*article.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if len(articles) >= source.Settings.MaxItems {
			break
		}

		a := c.buildArticle(ctx, item, source, lang)
		if a == nil {
			continue
		}
		articles = append(articles, a)
	}

	slog.Info("Collected articles", "source", source.Source.Name,
		"new", len(articles), "feed_items", len(feed.Items))

	return articles, nil
}

func (c *RSSCollector) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// buildArticle converts a feed item into a raw article, or returns nil when
// the item should be skipped.
func (c *RSSCollector) buildArticle(ctx context.Context, item *gofeed.Item, source *config.SourceConfig, lang string) *article.Article {
	link := item.Link
	title := strings.TrimSpace(item.Title)
	if title == "" || link == "" {
		return nil
	}

	hash := contentHash(title, link)

	c.mu.Lock()
	if _, dup := c.seen[hash]; dup {
		c.mu.Unlock()
		return nil
	}
	c.seen[hash] = struct{}{}
	c.mu.Unlock()

	if c.repo != nil {
		if exists, err := c.repo.HasArticleWithURL(link); err != nil {
			slog.Warn("Duplicate check failed", "source", source.Source.Name, "url", link, "error", err)
		} else if exists {
			return nil
		}
	}

	content := item.Content
	if content == "" {
		content = item.Description
	}
	if source.Settings.ExtractContent {
		if extracted := c.extractFullContent(ctx, link); extracted != "" {
			content = extracted
		}
	}

	a := article.New(title, content, link, source.Source.Name, article.SourceType(source.Source.Type))
	a.Language = lang

	if item.PublishedParsed != nil {
		published := item.PublishedParsed.UTC()
		a.PublishedAt = &published
	}
	if len(item.Categories) > 0 {
		a.Categories = item.Categories
	} else if source.Source.Category != "" {
		a.Categories = []string{source.Source.Category}
	}

	return a
}

// extractFullContent fetches the article page and runs readability over it.
// Best effort: any failure falls back to the feed-provided content.
func (c *RSSCollector) extractFullContent(ctx context.Context, url string) string {
	data, err := c.fetch(ctx, url)
	if err != nil {
		slog.Debug("Content fetch failed", "url", url, "error", err)
		return ""
	}

	content, err := c.extractor.Run(data)
	if err != nil {
		slog.Debug("Content extraction failed", "url", url, "error", err)
		return ""
	}
	return content
}

func contentHash(title, link string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(title) + "|" + link))
	return hex.EncodeToString(sum[:])
}

// normalizeLanguage reduces a feed or configured language tag to its base
// form ("en-US" -> "en"). Falls back to "en" for unparseable tags.
func normalizeLanguage(feedLang, configLang string) string {
	for _, candidate := range []string{feedLang, configLang} {
		if candidate == "" {
			continue
		}
		tag, err := language.Parse(candidate)
		if err != nil {
			continue
		}
		base, _ := tag.Base()
		return base.String()
	}
	return "en"
}
