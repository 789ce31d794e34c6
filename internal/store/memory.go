package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests and as a reference
// implementation of the Store contract.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string][]*Report

	// Now is swappable for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports: make(map[string][]*Report),
		Now:     time.Now,
	}
}

func (m *MemoryStore) ListKnownURLs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	urls := make([]string, 0, len(m.reports))
	for url := range m.reports {
		if !strings.HasPrefix(url, "http") {
			continue
		}
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls, nil
}

func (m *MemoryStore) AppendReport(_ context.Context, url string, scores []Category) (*Report, error) {
	now := m.Now()
	report := &Report{
		LHR:            scores,
		AuditedOn:      now,
		LastAccessedOn: now,
	}

	m.mu.Lock()
	m.reports[url] = append(m.reports[url], report)
	m.mu.Unlock()

	return report, nil
}

func (m *MemoryStore) RecentReports(_ context.Context, url string, limit int) ([]*Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.reports[url]
	if len(history) == 0 {
		return []*Report{}, nil
	}

	sorted := make([]*Report, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].AuditedOn.Before(sorted[j].AuditedOn)
	})

	// Keep the newest limit entries, preserving oldest -> newest order.
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[len(sorted)-limit:]
	}
	return sorted, nil
}
