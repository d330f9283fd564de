package pipeline

import (
	"time"

	"github.com/newsmill/newsmill/app/article"
)

// QueueItem wraps one article waiting for (or undergoing) enrichment. An item
// is in exactly one of three states: queued, in-flight, or terminal. Only the
// worker currently holding an item mutates it.
type QueueItem struct {
	Article     *article.Article
	Priority    int
	RetryCount  int
	AddedAt     time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	LastError   string

	// heap bookkeeping, managed by workQueue
	seq   uint64
	index int
}

func newQueueItem(a *article.Article, priority int) *QueueItem {
	return &QueueItem{
		Article:  a,
		Priority: priority,
		AddedAt:  time.Now().UTC(),
	}
}

// requeued returns a fresh item for the next attempt: same article, same
// priority, same AddedAt, incremented retry count. StartedAt is reset so the
// next worker records its own.
func (i *QueueItem) requeued() *QueueItem {
	return &QueueItem{
		Article:    i.Article,
		Priority:   i.Priority,
		RetryCount: i.RetryCount + 1,
		AddedAt:    i.AddedAt,
		LastError:  i.LastError,
	}
}

// WaitTime reports how long the item has been (or was) waiting in the queue.
// Call only while holding the item (in a worker or a dead-letter hook);
// StartedAt is written by the worker without further synchronization.
func (i *QueueItem) WaitTime() time.Duration {
	if i.StartedAt != nil {
		return i.StartedAt.Sub(i.AddedAt)
	}
	return time.Since(i.AddedAt)
}

// ProcessingTime reports the duration of the completed attempt, or 0 if the
// item has not reached a terminal state yet.
func (i *QueueItem) ProcessingTime() time.Duration {
	if i.StartedAt == nil || i.CompletedAt == nil {
		return 0
	}
	return i.CompletedAt.Sub(*i.StartedAt)
}
