package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/newsmill/newsmill/app/article"
)

// Transformer enriches a single raw article. Implementations may be slow and
// may fail transiently; deadline enforcement is the implementation's concern.
type Transformer interface {
	Transform(ctx context.Context, a *article.Article) (*article.Article, error)
}

// Sink persists an enriched article. Failures are retried together with the
// enrichment step.
type Sink interface {
	Store(ctx context.Context, a *article.Article) error
}

// DeadLetterFunc is invoked for items that exhausted their retry budget.
// The default (nil) preserves drop semantics: only the failed counter moves.
type DeadLetterFunc func(item *QueueItem, err error)

const (
	DefaultWorkerCount  = 5
	DefaultMaxRetries   = 3
	DefaultPollInterval = 500 * time.Millisecond

	queuePreviewSize = 10
)

// Options configures a Pipeline. Zero and negative WorkerCount and
// PollInterval fall back to the defaults above. MaxRetries 0 disables
// retries; a negative value selects the default.
type Options struct {
	WorkerCount  int
	MaxRetries   int
	PollInterval time.Duration
	DeadLetter   DeadLetterFunc
}

// Pipeline coordinates asynchronous article enrichment: a priority work queue
// serviced by a fixed pool of workers, with bounded retry, pause/resume
// control, and live statistics.
type Pipeline struct {
	transformer Transformer
	sink        Sink
	deadLetter  DeadLetterFunc

	workerCount  int
	maxRetries   int
	pollInterval time.Duration

	queue *workQueue

	mu        sync.Mutex
	inFlight  map[string]*QueueItem
	stats     counters
	startedAt time.Time

	running       atomic.Bool
	paused        atomic.Bool
	activeWorkers atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(transformer Transformer, sink Sink, opts Options) *Pipeline {
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = DefaultWorkerCount
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	return &Pipeline{
		transformer:  transformer,
		sink:         sink,
		deadLetter:   opts.DeadLetter,
		workerCount:  opts.WorkerCount,
		maxRetries:   opts.MaxRetries,
		pollInterval: opts.PollInterval,
		queue:        newWorkQueue(),
		inFlight:     make(map[string]*QueueItem),
	}
}

// Start spawns the worker pool. Calling Start on a running pipeline is a
// logged no-op.
func (p *Pipeline) Start() {
	if !p.running.CompareAndSwap(false, true) {
		slog.Warn("Pipeline is already running")
		return
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.paused.Store(false)

	p.mu.Lock()
	p.startedAt = time.Now().UTC()
	p.mu.Unlock()

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	slog.Info("Pipeline started", "workers", p.workerCount, "max_retries", p.maxRetries)
}

// Stop signals cooperative cancellation and blocks until every worker has
// exited. Workers finish the item they hold; no Sink call happens after Stop
// returns. Queued items remain queued.
func (p *Pipeline) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}

	slog.Info("Stopping pipeline...")
	p.cancel()
	p.wg.Wait()
	slog.Info("Pipeline stopped", "queue_size", p.queue.Size())
}

// Pause stops workers from dequeuing new items. Items already in flight run
// to a terminal state.
func (p *Pipeline) Pause() {
	p.paused.Store(true)
	slog.Info("Pipeline paused")
}

func (p *Pipeline) Resume() {
	p.paused.Store(false)
	slog.Info("Pipeline resumed")
}

// ProcessArticle enriches and stores a single article immediately, bypassing
// the queue. There is no retry on this path: the result is nil on failure and
// the caller absorbs it.
func (p *Pipeline) ProcessArticle(ctx context.Context, a *article.Article) *article.Article {
	enriched, err := p.transformer.Transform(ctx, a)
	if err == nil {
		err = p.sink.Store(ctx, enriched)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		slog.Error("Immediate processing failed", "article_id", a.ID, "error", err)
		p.stats.failed++
		return nil
	}

	p.stats.processed++
	return enriched
}

// EnqueueArticle adds one article to the work queue. Higher priority dequeues
// first; equal priorities are processed in arrival order.
func (p *Pipeline) EnqueueArticle(a *article.Article, priority int) {
	p.queue.Enqueue(newQueueItem(a, priority))
	slog.Debug("Queued article", "article_id", a.ID, "priority", priority, "queue_size", p.queue.Size())
}

func (p *Pipeline) EnqueueArticles(articles []*article.Article, priority int) {
	for _, a := range articles {
		p.EnqueueArticle(a, priority)
	}
	slog.Info("Queued articles", "count", len(articles), "priority", priority)
}

// ProcessBatch processes a batch of articles. With useQueue the articles are
// enqueued and the returned slice is empty; progress is visible through
// Statistics. Without it each article is processed immediately and the slice
// holds the successes, which may be partial.
func (p *Pipeline) ProcessBatch(ctx context.Context, articles []*article.Article, useQueue bool) []*article.Article {
	if useQueue {
		p.EnqueueArticles(articles, 0)
		return nil
	}

	processed := make([]*article.Article, 0, len(articles))
	for _, a := range articles {
		if enriched := p.ProcessArticle(ctx, a); enriched != nil {
			processed = append(processed, enriched)
		}
	}

	slog.Info("Batch processed", "succeeded", len(processed), "total", len(articles))
	return processed
}

// ClearQueue drops all queued items, leaving in-flight items untouched.
func (p *Pipeline) ClearQueue() int {
	cleared := p.queue.Clear()
	slog.Info("Cleared processing queue", "count", cleared)
	return cleared
}

func (p *Pipeline) QueueSize() int {
	return p.queue.Size()
}

func (p *Pipeline) worker(id int) {
	defer p.wg.Done()

	p.activeWorkers.Add(1)
	defer p.activeWorkers.Add(-1)

	slog.Debug("Worker started", "worker_id", id)

	for {
		select {
		case <-p.ctx.Done():
			slog.Debug("Worker stopped", "worker_id", id)
			return
		default:
		}

		if p.paused.Load() {
			p.idle()
			continue
		}

		item, ok := p.queue.Dequeue()
		if !ok {
			p.idle()
			continue
		}

		p.process(id, item)
	}
}

// idle sleeps one poll interval, waking early on cancellation.
func (p *Pipeline) idle() {
	select {
	case <-p.ctx.Done():
	case <-time.After(p.pollInterval):
	}
}

func (p *Pipeline) process(workerID int, item *QueueItem) {
	started := time.Now().UTC()
	item.StartedAt = &started

	p.mu.Lock()
	p.inFlight[item.Article.ID] = item
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.inFlight, item.Article.ID)
		p.mu.Unlock()
	}()

	slog.Debug("Worker processing article", "worker_id", workerID, "article_id", item.Article.ID, "retry_count", item.RetryCount)

	enriched, err := p.transformer.Transform(p.ctx, item.Article)
	if err == nil {
		err = p.sink.Store(p.ctx, enriched)
	}

	if err != nil {
		p.handleFailure(workerID, item, err)
		return
	}

	completed := time.Now().UTC()
	item.CompletedAt = &completed

	p.mu.Lock()
	p.stats.processed++
	p.stats.totalProcessingTime += item.ProcessingTime()
	p.mu.Unlock()

	slog.Debug("Worker completed article", "worker_id", workerID, "article_id", item.Article.ID,
		"duration", item.ProcessingTime().String())
}

// handleFailure converts a Transform or Sink error into a retry or a
// permanent failure. The two error sources are deliberately not
// distinguished: a retry re-runs both steps.
func (p *Pipeline) handleFailure(workerID int, item *QueueItem, err error) {
	item.LastError = err.Error()

	slog.Error("Worker failed to process article", "worker_id", workerID, "article_id", item.Article.ID,
		"retry_count", item.RetryCount, "error", err)

	if item.RetryCount < p.maxRetries {
		retry := item.requeued()
		p.queue.Enqueue(retry)

		p.mu.Lock()
		p.stats.retried++
		p.mu.Unlock()

		slog.Info("Retrying article", "article_id", item.Article.ID,
			"retry_count", retry.RetryCount, "max_retries", p.maxRetries)
		return
	}

	p.mu.Lock()
	p.stats.failed++
	p.mu.Unlock()

	slog.Error("Article failed permanently", "article_id", item.Article.ID,
		"max_retries", p.maxRetries, "last_error", item.LastError)

	if p.deadLetter != nil {
		p.deadLetter(item, err)
	}
}
