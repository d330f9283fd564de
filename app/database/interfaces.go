package database

import (
	"context"

	"github.com/newsmill/newsmill/app/article"
)

// Repository is the persistence surface for articles. Store doubles as the
// pipeline sink: it upserts by article ID, so a retried store is idempotent.
type Repository interface {
	Store(ctx context.Context, a *article.Article) error

	GetArticle(id string) (*article.Article, error)
	GetRecentArticles(limit int) ([]*article.Article, error)
	GetArticleCount() (int, error)
	SearchArticles(query string, limit int) ([]*article.Article, error)
	HasArticleWithURL(url string) (bool, error)
}
