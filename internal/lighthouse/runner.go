package lighthouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/lightkeep/lightkeep/internal/logger"
	"github.com/lightkeep/lightkeep/internal/store"
	"github.com/lightkeep/lightkeep/internal/utils"
)

// Outcome is the explicit result of one audit run: a stored report on
// success, a reason on failure. Callers decide whether to surface or
// degrade; an audit failure must not break a page listing other URLs'
// reports.
type Outcome struct {
	Report *store.Report
	Err    error
}

// OK reports whether the audit run produced a stored report.
func (o Outcome) OK() bool { return o.Err == nil }

// AuditRunner runs one audit for a URL. Satisfied by Runner; handlers
// depend on the interface so tests can swap in a fake.
type AuditRunner interface {
	Run(ctx context.Context, url string) Outcome
}

// Runner invokes the external audit API and persists the trimmed result.
type Runner struct {
	store  store.Store
	logger logger.Logger
	client *http.Client
	apiURL string
	apiKey string
}

// NewRunner creates an audit runner. timeout bounds the whole audit call;
// a Lighthouse run routinely takes tens of seconds.
func NewRunner(s store.Store, log logger.Logger, apiURL, apiKey string, timeout time.Duration) *Runner {
	return &Runner{
		store:  s,
		logger: log,
		client: &http.Client{Timeout: timeout},
		apiURL: apiURL,
		apiKey: apiKey,
	}
}

type auditRequest struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

// rawReport captures only what the runner needs from the full Lighthouse
// report. Audit references inside each category are dropped by omission.
type rawReport struct {
	Categories map[string]rawCategory `json:"categories"`
}

type rawCategory struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Score             *float64 `json:"score"`
	Description       string   `json:"description"`
	ManualDescription string   `json:"manualDescription"`
}

// Run audits url, trims the result to category summaries and appends it to
// the store. Failures are logged here and returned as an Outcome with Err
// set; nothing is persisted on failure.
func (r *Runner) Run(ctx context.Context, url string) Outcome {
	outcome := r.run(ctx, url)
	if outcome.Err != nil {
		r.logger.Error("lighthouse audit failed",
			logger.String("url", url),
			logger.Error(outcome.Err))
	}
	return outcome
}

func (r *Runner) run(ctx context.Context, url string) Outcome {
	payload, err := json.Marshal(auditRequest{URL: url, Format: "json"})
	if err != nil {
		return Outcome{Err: fmt.Errorf("failed to marshal audit request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiURL, bytes.NewReader(payload))
	if err != nil {
		return Outcome{Err: fmt.Errorf("failed to build audit request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return Outcome{Err: fmt.Errorf("audit api call failed: %w", err)}
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Outcome{Err: fmt.Errorf("audit api returned status %d", resp.StatusCode)}
	}

	var raw rawReport
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Outcome{Err: fmt.Errorf("failed to decode audit response: %w", err)}
	}
	if len(raw.Categories) == 0 {
		return Outcome{Err: fmt.Errorf("audit response has no categories")}
	}

	scores := trimCategories(raw.Categories)

	report, err := r.store.AppendReport(ctx, url, scores)
	if err != nil {
		return Outcome{Err: fmt.Errorf("failed to save report: %w", err)}
	}

	r.logger.Info("lighthouse audit saved",
		logger.String("url", url),
		logger.Int("categories", len(scores)))

	return Outcome{Report: report}
}

// trimCategories converts the categories map into an ordered sequence of
// summary objects. Ordered by category id so stored documents are stable.
func trimCategories(raw map[string]rawCategory) []store.Category {
	scores := make([]store.Category, 0, len(raw))
	for _, cat := range raw {
		scores = append(scores, store.Category{
			ID:                cat.ID,
			Title:             cat.Title,
			Score:             cat.Score,
			Description:       cat.Description,
			ManualDescription: cat.ManualDescription,
		})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].ID < scores[j].ID })
	return scores
}
