package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/newsmill/newsmill/app/article"
	"github.com/newsmill/newsmill/app/config"
)

type mockCollector struct {
	mu       sync.Mutex
	calls    map[string]int
	articles []*article.Article
	err      error
}

func newMockCollector(articles []*article.Article) *mockCollector {
	return &mockCollector{calls: make(map[string]int), articles: articles}
}

func (m *mockCollector) Collect(_ context.Context, source *config.SourceConfig) ([]*article.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[source.Source.Name]++
	if m.err != nil {
		return nil, m.err
	}
	return m.articles, nil
}

func (m *mockCollector) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

type mockEnqueuer struct {
	mu         sync.Mutex
	enqueued   []*article.Article
	priorities []int
}

func (m *mockEnqueuer) EnqueueArticle(a *article.Article, priority int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued = append(m.enqueued, a)
	m.priorities = append(m.priorities, priority)
}

func (m *mockEnqueuer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.enqueued)
}

func schedulerSources(names ...string) map[string]*config.SourceConfig {
	sources := make(map[string]*config.SourceConfig)
	for _, name := range names {
		sources[name] = &config.SourceConfig{
			Source: config.SourceInfo{Name: name, URL: "https://example.com/" + name, Type: "rss"},
			Settings: config.SourceSettings{
				Enabled:         true,
				Priority:        3,
				RefreshInterval: 3600,
				MaxItems:        100,
				Timeout:         30,
			},
		}
	}
	return sources
}

func TestScheduler_CollectsOnStart(t *testing.T) {
	a := article.New("Title", "Content", "https://example.com/a", "feed", article.SourceTypeRSS)
	collector := newMockCollector([]*article.Article{a})
	enqueuer := &mockEnqueuer{}

	s := NewScheduler(collector, enqueuer, schedulerSources("feed"), time.Hour)
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for enqueuer.count() < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if got := collector.callCount("feed"); got != 1 {
		t.Errorf("expected 1 collect call, got %d", got)
	}
	if got := enqueuer.count(); got != 1 {
		t.Fatalf("expected 1 enqueued article, got %d", got)
	}
	if enqueuer.priorities[0] != 3 {
		t.Errorf("expected source priority 3, got %d", enqueuer.priorities[0])
	}
}

func TestScheduler_SkipsSourcesWithinRefreshInterval(t *testing.T) {
	collector := newMockCollector(nil)
	enqueuer := &mockEnqueuer{}

	s := NewScheduler(collector, enqueuer, schedulerSources("feed"), 20*time.Millisecond)
	s.Start()

	time.Sleep(100 * time.Millisecond)
	s.Stop()

	// The refresh interval is an hour, so only the initial round collects.
	if got := collector.callCount("feed"); got != 1 {
		t.Errorf("expected 1 collect call, got %d", got)
	}
}

func TestScheduler_RetriesFailedSourceNextTick(t *testing.T) {
	collector := newMockCollector(nil)
	collector.err = errors.New("fetch failed")
	enqueuer := &mockEnqueuer{}

	s := NewScheduler(collector, enqueuer, schedulerSources("feed"), 20*time.Millisecond)
	s.Start()

	deadline := time.Now().Add(2 * time.Second)
	for collector.callCount("feed") < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()

	if got := collector.callCount("feed"); got < 2 {
		t.Errorf("expected failed source to be retried, got %d calls", got)
	}
}

func TestScheduler_SkipsDisabledSources(t *testing.T) {
	collector := newMockCollector(nil)
	enqueuer := &mockEnqueuer{}

	sources := schedulerSources("enabled", "disabled")
	sources["disabled"].Settings.Enabled = false

	s := NewScheduler(collector, enqueuer, sources, time.Hour)
	s.Start()

	deadline := time.Now().Add(2 * time.Second)
	for collector.callCount("enabled") < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()

	if got := collector.callCount("enabled"); got != 1 {
		t.Errorf("expected enabled source to be collected once, got %d", got)
	}
	if got := collector.callCount("disabled"); got != 0 {
		t.Errorf("expected disabled source to be skipped, got %d calls", got)
	}
}

func TestScheduler_StopWaitsForRound(t *testing.T) {
	collector := newMockCollector(nil)
	enqueuer := &mockEnqueuer{}

	s := NewScheduler(collector, enqueuer, schedulerSources("feed"), time.Hour)
	s.Start()
	s.Stop()

	// Stop returned, so no collection can run afterwards.
	before := collector.callCount("feed")
	time.Sleep(30 * time.Millisecond)
	if got := collector.callCount("feed"); got != before {
		t.Errorf("expected no collect calls after Stop, got %d extra", got-before)
	}
}
