package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lightkeep/lightkeep/internal/slug"
	"github.com/lightkeep/lightkeep/internal/store"
)

// Store is the Redis-backed report store. Each URL gets one sorted set
// keyed by its encoded identifier; members are JSON report documents
// scored by their audit timestamp, which gives ordered/limited history
// queries for free.
type Store struct {
	client *redis.Client

	// maxStored trims each partition to the newest N reports after an
	// append. 0 keeps the full history.
	maxStored int

	// now is swappable for tests. Defaults to time.Now.
	now func() time.Time
}

// NewStore creates a Redis report store. maxStored bounds per-URL history
// growth; pass 0 to retain everything.
func NewStore(client *redis.Client, maxStored int) *Store {
	return &Store{
		client:    client,
		maxStored: maxStored,
		now:       time.Now,
	}
}

// ListKnownURLs scans all report partitions and returns the decoded URLs,
// sorted ascending. Partitions whose decoded identifier does not start
// with an HTTP(S) scheme are skipped; they are noise or system keys.
func (s *Store) ListKnownURLs(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	urls := make([]string, 0, 16)

	iter := s.client.Scan(ctx, 0, KeyPrefixReports+"*", 0).Iterator()
	for iter.Next(ctx) {
		id, err := ExtractID(iter.Val())
		if err != nil {
			continue
		}
		url := slug.Decode(id)
		if !strings.HasPrefix(url, "http") {
			continue
		}
		if seen[url] {
			continue
		}
		seen[url] = true
		urls = append(urls, url)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan report partitions: %w", err)
	}

	sort.Strings(urls)
	return urls, nil
}

// AppendReport persists a new report document into the URL's partition and
// returns the stored record.
func (s *Store) AppendReport(ctx context.Context, url string, scores []store.Category) (*store.Report, error) {
	now := s.now()
	report := &store.Report{
		LHR:            scores,
		AuditedOn:      now,
		LastAccessedOn: now,
	}

	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	key := ReportsKey(slug.Encode(url))
	if err := s.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: data,
	}).Err(); err != nil {
		return nil, fmt.Errorf("failed to append report: %w", err)
	}

	if s.maxStored > 0 {
		// Drop everything but the newest maxStored entries.
		if err := s.client.ZRemRangeByRank(ctx, key, 0, int64(-s.maxStored-1)).Err(); err != nil {
			return nil, fmt.Errorf("failed to trim report history: %w", err)
		}
	}

	return report, nil
}

// RecentReports fetches up to limit most recent reports and returns them
// ordered oldest -> newest.
func (s *Store) RecentReports(ctx context.Context, url string, limit int) ([]*store.Report, error) {
	key := ReportsKey(slug.Encode(url))

	members, err := s.client.ZRevRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}

	reports := make([]*store.Report, 0, len(members))
	for _, member := range members {
		var report store.Report
		if err := json.Unmarshal([]byte(member), &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		reports = append(reports, &report)
	}

	// ZRevRange returns newest first; callers expect oldest -> newest.
	for i, j := 0, len(reports)-1; i < j; i, j = i+1, j-1 {
		reports[i], reports[j] = reports[j], reports[i]
	}

	return reports, nil
}
