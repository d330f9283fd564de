package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/newsmill/newsmill/app/article"
)

var _ Repository = (*ArticleRepository)(nil)

// ArticleRepository handles database operations for articles.
type ArticleRepository struct {
	db *DB
}

func NewArticleRepository(db *DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Store upserts an article by ID. Enrichment columns are written only when
// the article carries an enrichment block.
func (r *ArticleRepository) Store(ctx context.Context, a *article.Article) error {
	categories, err := json.Marshal(a.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	var sentiment, summary sql.NullString
	var sentimentScore, biasScore sql.NullFloat64
	var wordCount, readingTime sql.NullInt64
	var enrichedAt sql.NullTime

	if e := a.Enrichment; e != nil {
		sentiment = sql.NullString{String: e.Sentiment, Valid: true}
		summary = sql.NullString{String: e.Summary, Valid: true}
		sentimentScore = sql.NullFloat64{Float64: e.SentimentScore, Valid: true}
		biasScore = sql.NullFloat64{Float64: e.BiasScore, Valid: true}
		wordCount = sql.NullInt64{Int64: int64(e.WordCount), Valid: true}
		readingTime = sql.NullInt64{Int64: int64(e.ReadingTime), Valid: true}
		enrichedAt = sql.NullTime{Time: e.EnrichedAt, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO articles (
			id, title, content, url, source_name, source_type, language,
			categories, published_at, collected_at,
			sentiment, sentiment_score, bias_score, summary,
			word_count, reading_time, enriched_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			categories = excluded.categories,
			sentiment = excluded.sentiment,
			sentiment_score = excluded.sentiment_score,
			bias_score = excluded.bias_score,
			summary = excluded.summary,
			word_count = excluded.word_count,
			reading_time = excluded.reading_time,
			enriched_at = excluded.enriched_at,
			updated_at = excluded.updated_at
	`, a.ID, a.Title, a.Content, a.URL, a.SourceName, string(a.SourceType), a.Language,
		string(categories), nullableTime(a.PublishedAt), a.CollectedAt.UTC(),
		sentiment, sentimentScore, biasScore, summary,
		wordCount, readingTime, enrichedAt, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("failed to store article: %w", err)
	}
	return nil
}

func (r *ArticleRepository) GetArticle(id string) (*article.Article, error) {
	row := r.db.QueryRow(selectColumns+` FROM articles WHERE id = ?`, id)

	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return a, nil
}

func (r *ArticleRepository) GetRecentArticles(limit int) ([]*article.Article, error) {
	rows, err := r.db.Query(selectColumns+`
		FROM articles
		ORDER BY collected_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

func (r *ArticleRepository) GetArticleCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

// SearchArticles matches the query against title and content.
func (r *ArticleRepository) SearchArticles(query string, limit int) ([]*article.Article, error) {
	pattern := "%" + query + "%"
	rows, err := r.db.Query(selectColumns+`
		FROM articles
		WHERE title LIKE ? OR content LIKE ?
		ORDER BY collected_at DESC, id
		LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

func (r *ArticleRepository) HasArticleWithURL(url string) (bool, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM articles WHERE url = ? LIMIT 1`, url).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check article URL: %w", err)
	}
	return true, nil
}

const selectColumns = `
	SELECT id, title, content, url, source_name, source_type, language,
		categories, published_at, collected_at,
		sentiment, sentiment_score, bias_score, summary,
		word_count, reading_time, enriched_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*article.Article, error) {
	var a article.Article
	var sourceType, categories string
	var publishedAt, enrichedAt sql.NullTime
	var sentiment, summary sql.NullString
	var sentimentScore, biasScore sql.NullFloat64
	var wordCount, readingTime sql.NullInt64

	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.URL, &a.SourceName, &sourceType,
		&a.Language, &categories, &publishedAt, &a.CollectedAt,
		&sentiment, &sentimentScore, &biasScore, &summary,
		&wordCount, &readingTime, &enrichedAt)
	if err != nil {
		return nil, err
	}

	a.SourceType = article.SourceType(sourceType)
	if err := json.Unmarshal([]byte(categories), &a.Categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		a.PublishedAt = &t
	}

	// Enrichment columns are all-or-nothing; enriched_at marks presence.
	if enrichedAt.Valid {
		a.Enrichment = &article.Enrichment{
			Sentiment:      sentiment.String,
			SentimentScore: sentimentScore.Float64,
			BiasScore:      biasScore.Float64,
			Summary:        summary.String,
			WordCount:      int(wordCount.Int64),
			ReadingTime:    int(readingTime.Int64),
			EnrichedAt:     enrichedAt.Time,
		}
	}

	return &a, nil
}

func collectArticles(rows *sql.Rows) ([]*article.Article, error) {
	articles := make([]*article.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return articles, nil
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
