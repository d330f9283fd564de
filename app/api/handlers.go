package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newsmill/newsmill/app/article"
	"github.com/newsmill/newsmill/app/database"
)

const defaultListLimit = 50

func NewHandler(p PipelineInterface, repo database.Repository, version string) *Handler {
	return &Handler{
		pipeline: p,
		repo:     repo,
		version:  version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.repo.GetArticleCount(); err == nil {
		health["articles"] = count
	}

	health["queue_size"] = h.pipeline.QueueSize()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := h.pipeline.Statistics()

	response := gin.H{"pipeline": stats}

	if count, err := h.repo.GetArticleCount(); err == nil {
		response["stored_articles"] = count
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetQueueStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.pipeline.QueueStatus())
}

func (h *Handler) ListArticles(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	var (
		articles []*article.Article
		err      error
	)

	if query := c.Query("q"); query != "" {
		articles, err = h.repo.SearchArticles(query, limit)
	} else {
		articles, err = h.repo.GetRecentArticles(limit)
	}

	if err != nil {
		slog.Error("Database error", "operation", "list_articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"total":    len(articles),
	})
}

func (h *Handler) GetArticle(c *gin.Context) {
	id := c.Param("id")

	a, err := h.repo.GetArticle(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_article", "article_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, a)
}

type submitArticleRequest struct {
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content" binding:"required"`
	URL        string `json:"url" binding:"required"`
	SourceName string `json:"source_name"`
	SourceType string `json:"source_type"`
	Priority   int    `json:"priority"`
	UseQueue   *bool  `json:"use_queue"`
}

func (r *submitArticleRequest) toArticle() *article.Article {
	sourceName := r.SourceName
	if sourceName == "" {
		sourceName = "api"
	}
	sourceType := article.SourceType(r.SourceType)
	if sourceType == "" {
		sourceType = article.SourceTypeAPI
	}
	return article.New(r.Title, r.Content, r.URL, sourceName, sourceType)
}

func (r *submitArticleRequest) queued() bool {
	return r.UseQueue == nil || *r.UseQueue
}

// SubmitArticle accepts a single article. Queued submissions return
// immediately with 202; immediate ones block until processing finishes.
func (h *Handler) SubmitArticle(c *gin.Context) {
	var req submitArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	a := req.toArticle()

	if req.queued() {
		h.pipeline.EnqueueArticle(a, req.Priority)
		c.JSON(http.StatusAccepted, gin.H{
			"queued":     true,
			"article_id": a.ID,
			"queue_size": h.pipeline.QueueSize(),
		})
		return
	}

	enriched := h.pipeline.ProcessArticle(c.Request.Context(), a)
	if enriched == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Article processing failed"})
		return
	}

	c.JSON(http.StatusOK, enriched)
}

type submitBatchRequest struct {
	Articles []submitArticleRequest `json:"articles" binding:"required,min=1,dive"`
	Priority int                    `json:"priority"`
	UseQueue *bool                  `json:"use_queue"`
}

func (h *Handler) SubmitBatch(c *gin.Context) {
	var req submitBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	articles := make([]*article.Article, 0, len(req.Articles))
	for i := range req.Articles {
		articles = append(articles, req.Articles[i].toArticle())
	}

	if req.UseQueue == nil || *req.UseQueue {
		h.pipeline.EnqueueArticles(articles, req.Priority)
		c.JSON(http.StatusAccepted, gin.H{
			"queued":     true,
			"count":      len(articles),
			"queue_size": h.pipeline.QueueSize(),
		})
		return
	}

	processed := h.pipeline.ProcessBatch(c.Request.Context(), articles, false)
	c.JSON(http.StatusOK, gin.H{
		"processed": len(processed),
		"failed":    len(articles) - len(processed),
		"articles":  processed,
	})
}

func (h *Handler) PausePipeline(c *gin.Context) {
	h.pipeline.Pause()
	c.JSON(http.StatusOK, gin.H{"paused": true})
}

func (h *Handler) ResumePipeline(c *gin.Context) {
	h.pipeline.Resume()
	c.JSON(http.StatusOK, gin.H{"paused": false})
}

func (h *Handler) ClearQueue(c *gin.Context) {
	cleared := h.pipeline.ClearQueue()
	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}
