package api

import (
	"context"

	"github.com/newsmill/newsmill/app/article"
	"github.com/newsmill/newsmill/app/database"
	"github.com/newsmill/newsmill/app/pipeline"
)

type PipelineInterface interface {
	Statistics() pipeline.Statistics
	QueueStatus() pipeline.QueueStatus
	ProcessArticle(ctx context.Context, a *article.Article) *article.Article
	EnqueueArticle(a *article.Article, priority int)
	EnqueueArticles(articles []*article.Article, priority int)
	ProcessBatch(ctx context.Context, articles []*article.Article, useQueue bool) []*article.Article
	Pause()
	Resume()
	ClearQueue() int
	QueueSize() int
}

var _ PipelineInterface = (*pipeline.Pipeline)(nil)

type Handler struct {
	pipeline PipelineInterface
	repo     database.Repository
	version  string
}
