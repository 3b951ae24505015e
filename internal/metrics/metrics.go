// Package metrics counts refresh cycle outcomes per feed and optionally
// publishes them to CloudWatch. Publishing failures never affect the feed
// path; they are logged and dropped.
package metrics

import (
	"sync"
	"time"
)

type feedKey struct {
	Exchange string
	Symbol   string
}

// FeedStats is one feed's cumulative cycle outcome view.
type FeedStats struct {
	Exchange    string
	Symbol      string
	Success     int64
	Failure     int64
	Levels      int64 // bid+ask rows in the most recent good snapshot
	LastLatency time.Duration
}

// Recorder accumulates cycle outcomes. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	feeds map[feedKey]*FeedStats
}

func NewRecorder() *Recorder {
	return &Recorder{feeds: make(map[feedKey]*FeedStats)}
}

// RecordCycle notes one settled cycle. levels counts rows in the snapshot and
// is ignored for failed cycles.
func (r *Recorder) RecordCycle(exchange, symbol string, levels int, latency time.Duration, failed bool) {
	key := feedKey{Exchange: exchange, Symbol: symbol}
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.feeds[key]
	if !ok {
		st = &FeedStats{Exchange: exchange, Symbol: symbol}
		r.feeds[key] = st
	}
	if failed {
		st.Failure++
	} else {
		st.Success++
		st.Levels = int64(levels)
	}
	st.LastLatency = latency
}

// Snapshot copies out the accumulated stats.
func (r *Recorder) Snapshot() []FeedStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]FeedStats, 0, len(r.feeds))
	for _, st := range r.feeds {
		out = append(out, *st)
	}
	return out
}
