package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newsmill/newsmill/app/config"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <language>en-US</language>
    <item>
      <title>First Article</title>
      <link>https://example.com/first</link>
      <description>Body of the first article.</description>
      <category>tech</category>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title>Second Article</title>
      <link>https://example.com/second</link>
      <description>Body of the second article.</description>
    </item>
    <item>
      <title>Third Article</title>
      <link>https://example.com/third</link>
      <description>Body of the third article.</description>
    </item>
  </channel>
</rss>`

func testSource(url string) *config.SourceConfig {
	return &config.SourceConfig{
		Source: config.SourceInfo{
			Name:     "test-source",
			URL:      url,
			Type:     "rss",
			Category: "news",
			Language: "en",
		},
		Settings: config.SourceSettings{
			Enabled:         true,
			Priority:        5,
			RefreshInterval: 3600,
			MaxItems:        100,
			Timeout:         30,
		},
	}
}

func TestRSSCollector_Collect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "Newsmill/test" {
			t.Errorf("expected User-Agent 'Newsmill/test', got %q", got)
		}
		w.Write([]byte(testFeed))
	}))
	defer server.Close()

	c := NewRSSCollector(server.Client(), nil, "Newsmill/test")

	articles, err := c.Collect(context.Background(), testSource(server.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "First Article" {
		t.Errorf("expected title 'First Article', got %q", first.Title)
	}
	if first.URL != "https://example.com/first" {
		t.Errorf("expected URL 'https://example.com/first', got %q", first.URL)
	}
	if first.SourceName != "test-source" {
		t.Errorf("expected source 'test-source', got %q", first.SourceName)
	}
	if first.Language != "en" {
		t.Errorf("expected language 'en' from 'en-US' feed tag, got %q", first.Language)
	}
	if first.PublishedAt == nil {
		t.Fatal("expected published timestamp to be set")
	}
	if got := first.PublishedAt.Year(); got != 2006 {
		t.Errorf("expected published year 2006, got %d", got)
	}
	if len(first.Categories) != 1 || first.Categories[0] != "tech" {
		t.Errorf("expected categories [tech], got %v", first.Categories)
	}

	// Items without their own categories inherit the source category.
	if len(articles[1].Categories) != 1 || articles[1].Categories[0] != "news" {
		t.Errorf("expected fallback categories [news], got %v", articles[1].Categories)
	}
}

func TestRSSCollector_CollectSkipsSeenItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testFeed))
	}))
	defer server.Close()

	c := NewRSSCollector(server.Client(), nil, "Newsmill/test")
	source := testSource(server.URL)

	articles, err := c.Collect(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles on first collect, got %d", len(articles))
	}

	articles, err = c.Collect(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("expected 0 new articles on second collect, got %d", len(articles))
	}
}

func TestRSSCollector_CollectRespectsMaxItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testFeed))
	}))
	defer server.Close()

	c := NewRSSCollector(server.Client(), nil, "Newsmill/test")
	source := testSource(server.URL)
	source.Settings.MaxItems = 2

	articles, err := c.Collect(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("expected 2 articles with max_items 2, got %d", len(articles))
	}
}

func TestRSSCollector_CollectServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewRSSCollector(server.Client(), nil, "Newsmill/test")

	_, err := c.Collect(context.Background(), testSource(server.URL))
	if err == nil {
		t.Fatal("expected error for server failure, got nil")
	}
}

func TestRSSCollector_CollectTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(testFeed))
	}))
	defer server.Close()

	c := NewRSSCollector(server.Client(), nil, "Newsmill/test")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Collect(ctx, testSource(server.URL))
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		feedLang   string
		configLang string
		expected   string
	}{
		{"en-US", "", "en"},
		{"", "de", "de"},
		{"pt-BR", "en", "pt"},
		{"not a tag", "fr", "fr"},
		{"", "", "en"},
	}

	for _, tt := range tests {
		if got := normalizeLanguage(tt.feedLang, tt.configLang); got != tt.expected {
			t.Errorf("normalizeLanguage(%q, %q) = %q, expected %q",
				tt.feedLang, tt.configLang, got, tt.expected)
		}
	}
}
