// Package quota counts live prediction transactions per fixed window so the
// service can stop calling the upstream API before its provider starts
// refusing requests.
//
// Redis key structure:
//
//	{prefix}:{YYYYMMDDHH}  - transaction counter for an hourly window
package quota

import (
	"context"
	"sync"
	"time"
)

// Usage describes the state of the current window after an operation.
type Usage struct {
	Used    int64 `json:"used"`
	Limit   int64 `json:"limit"` // <= 0 means unlimited
	Allowed bool  `json:"allowed"`
}

// Tracker reserves and reports live API transactions.
type Tracker interface {
	// Reserve counts one transaction when the window still has budget.
	Reserve(ctx context.Context) (Usage, error)
	// Usage reports the current window without counting.
	Usage(ctx context.Context) (Usage, error)
}

// windowKey names the bucket containing t. Windows of an hour or longer
// are keyed by hour; shorter windows fall back to unix-second buckets.
func windowKey(t time.Time, window time.Duration) string {
	if window >= time.Hour && window%time.Hour == 0 {
		return t.UTC().Truncate(window).Format("2006010215")
	}
	return t.UTC().Truncate(window).Format("20060102150405")
}

// Memory is an in-process Tracker.
type Memory struct {
	mu     sync.Mutex
	limit  int64
	window time.Duration
	now    func() time.Time
	key    string
	used   int64
}

// NewMemory creates an in-memory tracker allowing limit transactions per window.
func NewMemory(limit int64, window time.Duration) *Memory {
	if window <= 0 {
		window = time.Hour
	}
	return &Memory{limit: limit, window: window, now: time.Now}
}

func (m *Memory) roll() {
	k := windowKey(m.now(), m.window)
	if k != m.key {
		m.key = k
		m.used = 0
	}
}

func (m *Memory) Reserve(ctx context.Context) (Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roll()

	if m.limit > 0 && m.used >= m.limit {
		return Usage{Used: m.used, Limit: m.limit, Allowed: false}, nil
	}
	m.used++
	return Usage{Used: m.used, Limit: m.limit, Allowed: true}, nil
}

func (m *Memory) Usage(ctx context.Context) (Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roll()
	return Usage{Used: m.used, Limit: m.limit, Allowed: m.limit <= 0 || m.used < m.limit}, nil
}
