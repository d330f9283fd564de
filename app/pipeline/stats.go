package pipeline

import (
	"time"
	"unicode/utf8"
)

type counters struct {
	processed           int64
	failed              int64
	retried             int64
	totalProcessingTime time.Duration
}

// Statistics is a point-in-time snapshot of pipeline throughput. Reads are
// eventually consistent: counters move while the snapshot is being taken,
// which is acceptable for a monitoring surface.
type Statistics struct {
	Running       bool    `json:"running"`
	Paused        bool    `json:"paused"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	QueueSize     int     `json:"queue_size"`
	InFlight      int     `json:"in_flight"`
	Workers       int     `json:"workers"`
	WorkerCount   int     `json:"worker_count"`

	Processed    int64 `json:"processed"`
	Failed       int64 `json:"failed"`
	Retried      int64 `json:"retried"`
	QueueMaxSize int   `json:"queue_max_size"`

	TotalProcessingSeconds   float64 `json:"total_processing_seconds"`
	AverageProcessingSeconds float64 `json:"average_processing_seconds"`
	SuccessRate              float64 `json:"success_rate"`
	ArticlesPerSecond        float64 `json:"articles_per_second"`
}

// QueueStatus is a bounded preview of the queue: the first few queued items
// in dequeue order plus every in-flight item. The payload size is independent
// of queue depth.
type QueueStatus struct {
	TotalQueued   int             `json:"total_queued"`
	TotalInFlight int             `json:"total_in_flight"`
	Queued        []QueueItemInfo `json:"queued"`
	InFlight      []QueueItemInfo `json:"in_flight"`
}

type QueueItemInfo struct {
	ArticleID         string  `json:"article_id"`
	Title             string  `json:"title"`
	Priority          int     `json:"priority"`
	RetryCount        int     `json:"retry_count"`
	WaitSeconds       float64 `json:"wait_seconds"`
	ProcessingSeconds float64 `json:"processing_seconds,omitempty"`
}

func (p *Pipeline) Statistics() Statistics {
	p.mu.Lock()
	c := p.stats
	inFlight := len(p.inFlight)
	startedAt := p.startedAt
	p.mu.Unlock()

	stats := Statistics{
		Running:      p.running.Load(),
		Paused:       p.paused.Load(),
		QueueSize:    p.queue.Size(),
		InFlight:     inFlight,
		Workers:      int(p.activeWorkers.Load()),
		WorkerCount:  p.workerCount,
		Processed:    c.processed,
		Failed:       c.failed,
		Retried:      c.retried,
		QueueMaxSize: p.queue.MaxSizeSeen(),

		TotalProcessingSeconds: c.totalProcessingTime.Seconds(),
	}

	if !startedAt.IsZero() {
		stats.UptimeSeconds = time.Since(startedAt).Seconds()
	}
	if c.processed > 0 {
		stats.AverageProcessingSeconds = c.totalProcessingTime.Seconds() / float64(c.processed)
	}
	if total := c.processed + c.failed; total > 0 {
		stats.SuccessRate = float64(c.processed) / float64(total)
	}
	if stats.UptimeSeconds > 0 {
		stats.ArticlesPerSecond = float64(c.processed) / stats.UptimeSeconds
	}

	return stats
}

func (p *Pipeline) QueueStatus() QueueStatus {
	queued := p.queue.Peek(queuePreviewSize)

	status := QueueStatus{
		TotalQueued: p.queue.Size(),
		Queued:      make([]QueueItemInfo, 0, len(queued)),
	}

	for _, item := range queued {
		// A worker may have dequeued the item since the Peek snapshot, so
		// read only fields that are immutable after enqueue. StartedAt and
		// the other lifecycle fields belong to the holding worker.
		status.Queued = append(status.Queued, QueueItemInfo{
			ArticleID:   item.Article.ID,
			Title:       truncate(item.Article.Title, 50),
			Priority:    item.Priority,
			RetryCount:  item.RetryCount,
			WaitSeconds: time.Since(item.AddedAt).Seconds(),
		})
	}

	p.mu.Lock()
	status.TotalInFlight = len(p.inFlight)
	status.InFlight = make([]QueueItemInfo, 0, len(p.inFlight))
	for _, item := range p.inFlight {
		info := QueueItemInfo{
			ArticleID:  item.Article.ID,
			Title:      truncate(item.Article.Title, 50),
			Priority:   item.Priority,
			RetryCount: item.RetryCount,
		}
		if item.StartedAt != nil {
			info.ProcessingSeconds = time.Since(*item.StartedAt).Seconds()
		}
		status.InFlight = append(status.InFlight, info)
	}
	p.mu.Unlock()

	return status
}

// truncate cuts s to at most limit bytes without splitting a UTF-8 rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
