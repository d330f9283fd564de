package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/newsmill/newsmill/app/article"
)

func newTestRepository(t *testing.T) *ArticleRepository {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewArticleRepository(db)
}

func storedArticle(title string) *article.Article {
	a := article.New(title, "content of "+title, "https://example.com/"+title, "test-source", article.SourceTypeRSS)
	a.Categories = []string{"news", "test"}
	return a
}

func TestArticleRepository_StoreAndGetRaw(t *testing.T) {
	repo := newTestRepository(t)

	published := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	a := storedArticle("first")
	a.PublishedAt = &published

	if err := repo.Store(context.Background(), a); err != nil {
		t.Fatalf("Failed to store article: %v", err)
	}

	got, err := repo.GetArticle(a.ID)
	if err != nil {
		t.Fatalf("Failed to get article: %v", err)
	}
	if got == nil {
		t.Fatal("Expected article, got nil")
	}

	if got.Title != "first" {
		t.Errorf("Expected title 'first', got %q", got.Title)
	}
	if got.SourceType != article.SourceTypeRSS {
		t.Errorf("Expected source type rss, got %q", got.SourceType)
	}
	if len(got.Categories) != 2 || got.Categories[0] != "news" {
		t.Errorf("Expected categories round-trip, got %v", got.Categories)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(published) {
		t.Errorf("Expected published at %v, got %v", published, got.PublishedAt)
	}
	if got.Enriched() {
		t.Error("Expected raw article to have no enrichment")
	}
}

func TestArticleRepository_UpsertEnrichment(t *testing.T) {
	repo := newTestRepository(t)

	a := storedArticle("evolving")
	if err := repo.Store(context.Background(), a); err != nil {
		t.Fatalf("Failed to store raw article: %v", err)
	}

	enriched := *a
	enriched.Enrichment = &article.Enrichment{
		Sentiment:      "positive",
		SentimentScore: 0.8,
		BiasScore:      0.1,
		Summary:        "A short summary.",
		WordCount:      120,
		ReadingTime:    1,
		EnrichedAt:     time.Now().UTC(),
	}
	if err := repo.Store(context.Background(), &enriched); err != nil {
		t.Fatalf("Failed to store enriched article: %v", err)
	}

	got, err := repo.GetArticle(a.ID)
	if err != nil {
		t.Fatalf("Failed to get article: %v", err)
	}
	if !got.Enriched() {
		t.Fatal("Expected enrichment after upsert")
	}
	if got.Enrichment.Sentiment != "positive" || got.Enrichment.SentimentScore != 0.8 {
		t.Errorf("Expected enrichment round-trip, got %+v", got.Enrichment)
	}
	if got.Enrichment.WordCount != 120 {
		t.Errorf("Expected word count 120, got %d", got.Enrichment.WordCount)
	}

	// Upsert must not duplicate the row.
	count, err := repo.GetArticleCount()
	if err != nil {
		t.Fatalf("Failed to count articles: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 article after upsert, got %d", count)
	}
}

func TestArticleRepository_GetArticleMissing(t *testing.T) {
	repo := newTestRepository(t)

	got, err := repo.GetArticle("no-such-id")
	if err != nil {
		t.Fatalf("Expected no error for missing article, got: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing article, got %v", got.ID)
	}
}

func TestArticleRepository_GetRecentArticles(t *testing.T) {
	repo := newTestRepository(t)

	base := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		a := storedArticle(fmt.Sprintf("article-%d", i))
		a.CollectedAt = base.Add(time.Duration(i) * time.Hour)
		if err := repo.Store(context.Background(), a); err != nil {
			t.Fatalf("Failed to store article %d: %v", i, err)
		}
	}

	recent, err := repo.GetRecentArticles(2)
	if err != nil {
		t.Fatalf("Failed to get recent articles: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(recent))
	}
	if recent[0].Title != "article-2" || recent[1].Title != "article-1" {
		t.Errorf("Expected newest first, got [%s %s]", recent[0].Title, recent[1].Title)
	}
}

func TestArticleRepository_SearchArticles(t *testing.T) {
	repo := newTestRepository(t)

	topics := []string{"economy update", "sports final", "economy outlook"}
	for _, topic := range topics {
		if err := repo.Store(context.Background(), storedArticle(topic)); err != nil {
			t.Fatalf("Failed to store article: %v", err)
		}
	}

	results, err := repo.SearchArticles("economy", 10)
	if err != nil {
		t.Fatalf("Failed to search articles: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 matches, got %d", len(results))
	}
}

func TestArticleRepository_HasArticleWithURL(t *testing.T) {
	repo := newTestRepository(t)

	a := storedArticle("known")
	if err := repo.Store(context.Background(), a); err != nil {
		t.Fatalf("Failed to store article: %v", err)
	}

	exists, err := repo.HasArticleWithURL(a.URL)
	if err != nil {
		t.Fatalf("Failed to check URL: %v", err)
	}
	if !exists {
		t.Error("Expected stored URL to exist")
	}

	exists, err = repo.HasArticleWithURL("https://example.com/unknown")
	if err != nil {
		t.Fatalf("Failed to check URL: %v", err)
	}
	if exists {
		t.Error("Expected unknown URL to be absent")
	}
}
