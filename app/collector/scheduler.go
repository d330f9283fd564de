package collector

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/newsmill/newsmill/app/article"
	"github.com/newsmill/newsmill/app/config"
)

// Enqueuer accepts collected articles for asynchronous processing.
type Enqueuer interface {
	EnqueueArticle(a *article.Article, priority int)
}

// Scheduler periodically collects due sources and hands new articles to the
// processing pipeline at each source's configured priority.
type Scheduler struct {
	collector Collector
	enqueuer  Enqueuer
	sources   map[string]*config.SourceConfig
	interval  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	lastRun map[string]time.Time
}

func NewScheduler(collector Collector, enqueuer Enqueuer, sources map[string]*config.SourceConfig, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		collector: collector,
		enqueuer:  enqueuer,
		sources:   sources,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		lastRun:   make(map[string]time.Time),
	}
}

func (s *Scheduler) Start() {
	slog.Info("Starting collection scheduler", "sources", len(s.sources), "interval", s.interval)

	s.wg.Add(1)
	go s.run()
}

// Stop cancels the scheduler loop and waits for an in-progress collection
// round to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()

	slog.Info("Collection scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.collectDue()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.collectDue()
		}
	}
}

// collectDue fetches every enabled source whose refresh interval has elapsed
// and enqueues the new articles.
func (s *Scheduler) collectDue() {
	now := time.Now()

	for name, source := range s.sources {
		if s.ctx.Err() != nil {
			return
		}
		if !source.Settings.Enabled {
			continue
		}

		s.mu.Lock()
		last := s.lastRun[name]
		s.mu.Unlock()

		if !last.IsZero() && now.Sub(last) < source.Settings.GetRefreshInterval() {
			continue
		}

		articles, err := s.collector.Collect(s.ctx, source)
		if err != nil {
			slog.Error("Collection failed", "source", name, "error", err)
			continue
		}

		for _, a := range articles {
			s.enqueuer.EnqueueArticle(a, source.Settings.Priority)
		}

		s.mu.Lock()
		s.lastRun[name] = now
		s.mu.Unlock()
	}
}
