package store

import (
	"context"
	"time"
)

// MaxReports is the maximum number of reports served by a history query.
const MaxReports = 10

// Category is one Lighthouse category score, stripped of its audit
// references. Only summary fields are retained.
type Category struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Score             *float64 `json:"score"`
	Description       string   `json:"description,omitempty"`
	ManualDescription string   `json:"manualDescription,omitempty"`
}

// Report is one audit run for one URL.
type Report struct {
	// LHR holds the trimmed category scores.
	LHR []Category `json:"lhr"`

	// AuditedOn is when the audit ran. Immutable.
	AuditedOn time.Time `json:"auditedOn"`

	// LastAccessedOn is set once at write time and never refreshed on
	// reads. The name is historical; treat it as the last write time.
	LastAccessedOn time.Time `json:"lastAccessedOn"`
}

// Store persists audit reports, one append-only partition per URL.
// A URL is "known" as soon as at least one report exists for it; there is
// no separate registry.
type Store interface {
	// ListKnownURLs enumerates all partitions whose decoded identifier
	// starts with an HTTP(S) scheme and returns the decoded URLs sorted
	// ascending without duplicates.
	ListKnownURLs(ctx context.Context) ([]string, error)

	// AppendReport stores a new report for url with AuditedOn =
	// LastAccessedOn = now and returns the stored record.
	AppendReport(ctx context.Context, url string, scores []Category) (*Report, error)

	// RecentReports returns up to limit reports for url ordered oldest to
	// newest. An empty slice means no history exists; the caller decides
	// whether to trigger a fresh audit.
	RecentReports(ctx context.Context, url string, limit int) ([]*Report, error)
}
