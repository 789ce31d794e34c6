package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lightkeep/lightkeep/internal/httpserver/deps"
	"github.com/lightkeep/lightkeep/internal/lighthouse"
	"github.com/lightkeep/lightkeep/internal/logger"
	"github.com/lightkeep/lightkeep/internal/store"
)

// fakeRunner counts runs and either persists a canned report or fails.
type fakeRunner struct {
	store *store.MemoryStore
	fail  bool
	calls int
}

func (f *fakeRunner) Run(ctx context.Context, url string) lighthouse.Outcome {
	f.calls++
	if f.fail {
		return lighthouse.Outcome{Err: errors.New("audit api unreachable")}
	}
	score := 0.9
	report, err := f.store.AppendReport(ctx, url, []store.Category{
		{ID: "performance", Title: "Performance", Score: &score},
	})
	if err != nil {
		return lighthouse.Outcome{Err: err}
	}
	return lighthouse.Outcome{Report: report}
}

func testDeps(t *testing.T, mem *store.MemoryStore, runner *fakeRunner) deps.Deps {
	t.Helper()
	ref, err := lighthouse.LoadReference(filepath.Join("testdata", "lhr.json"))
	if err != nil {
		t.Fatalf("failed to load reference report: %v", err)
	}
	return deps.Deps{
		Logger:         logger.NewNop(),
		StartTime:      time.Now(),
		TimeNow:        time.Now,
		Store:          mem,
		Runner:         runner,
		Reference:      ref,
		RefreshTrigger: make(chan struct{}, 1),
	}
}

func TestReportsRequiresURL(t *testing.T) {
	mem := store.NewMemoryStore()
	d := testDeps(t, mem, &fakeRunner{store: mem})

	rec := httptest.NewRecorder()
	Reports(d)(rec, httptest.NewRequest(http.MethodGet, "/lh/reports", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestReportsServesTenMostRecent(t *testing.T) {
	mem := store.NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := base
	mem.Now = func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}
	for i := 0; i < 12; i++ {
		if _, err := mem.AppendReport(context.Background(), "https://example.com", nil); err != nil {
			t.Fatalf("AppendReport failed: %v", err)
		}
	}

	runner := &fakeRunner{store: mem}
	d := testDeps(t, mem, runner)

	rec := httptest.NewRecorder()
	Reports(d)(rec, httptest.NewRequest(http.MethodGet, "/lh/reports?url=https://example.com", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if runner.calls != 0 {
		t.Errorf("runner ran %d times for a populated history, want 0", runner.calls)
	}

	var got []store.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not a report array: %v", err)
	}
	if len(got) != store.MaxReports {
		t.Fatalf("response has %d reports, want %d", len(got), store.MaxReports)
	}
	// The two oldest runs are dropped; order is oldest -> newest.
	if want := base.Add(3 * time.Hour); !got[0].AuditedOn.Equal(want) {
		t.Errorf("first report auditedOn = %v, want %v", got[0].AuditedOn, want)
	}
	for i := 1; i < len(got); i++ {
		if !got[i].AuditedOn.After(got[i-1].AuditedOn) {
			t.Errorf("reports out of order at index %d", i)
		}
	}
}

func TestReportsEmptyHistoryTriggersOneAudit(t *testing.T) {
	mem := store.NewMemoryStore()
	runner := &fakeRunner{store: mem}
	d := testDeps(t, mem, runner)

	rec := httptest.NewRecorder()
	Reports(d)(rec, httptest.NewRequest(http.MethodGet, "/lh/reports?url=https://new.example.com", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if runner.calls != 1 {
		t.Errorf("runner ran %d times, want exactly 1", runner.calls)
	}

	var got []store.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not a report array: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("response has %d elements, want 1", len(got))
	}
	if len(got[0].LHR) == 0 {
		t.Error("fresh audit report has no category scores")
	}
}

func TestReportsEmptyHistoryAuditFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	runner := &fakeRunner{store: mem, fail: true}
	d := testDeps(t, mem, runner)

	rec := httptest.NewRecorder()
	Reports(d)(rec, httptest.NewRequest(http.MethodGet, "/lh/reports?url=https://down.example.com", nil))

	// The audit failure is swallowed; the caller still gets a 200 with a
	// single empty object.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not an array: %v", err)
	}
	if len(got) != 1 || len(got[0]) != 0 {
		t.Errorf("response = %v, want a single empty object", got)
	}
}

func TestNewAuditURLResolution(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		body    string
		wantURL bool
	}{
		{
			name:    "structured body field",
			target:  "/lh/newaudit",
			body:    `{"url": "https://example.com"}`,
			wantURL: true,
		},
		{
			name:    "query parameter",
			target:  "/lh/newaudit?url=https://example.com",
			body:    "",
			wantURL: true,
		},
		{
			name:    "raw body json string",
			target:  "/lh/newaudit",
			body:    `"https://example.com"`,
			wantURL: true,
		},
		{
			name:    "no url anywhere",
			target:  "/lh/newaudit",
			body:    `{"other": "field"}`,
			wantURL: false,
		},
		{
			name:    "empty body",
			target:  "/lh/newaudit",
			body:    "",
			wantURL: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemoryStore()
			runner := &fakeRunner{store: mem}
			d := testDeps(t, mem, runner)

			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			NewAudit(d)(rec, req)

			if tt.wantURL {
				if rec.Code != http.StatusCreated {
					t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
				}
				if runner.calls != 1 {
					t.Errorf("runner ran %d times, want 1", runner.calls)
				}
				var report store.Report
				if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
					t.Fatalf("response is not a report: %v", err)
				}
				if len(report.LHR) == 0 {
					t.Error("created report has no category scores")
				}
			} else {
				if rec.Code != http.StatusBadRequest {
					t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
				}
				if runner.calls != 0 {
					t.Errorf("runner ran %d times without a url, want 0", runner.calls)
				}
			}
		})
	}
}

func TestNewAuditSwallowsAuditFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	runner := &fakeRunner{store: mem, fail: true}
	d := testDeps(t, mem, runner)

	req := httptest.NewRequest(http.MethodPost, "/lh/newaudit", strings.NewReader(`{"url": "https://example.com"}`))
	rec := httptest.NewRecorder()
	NewAudit(d)(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("response = %v, want an empty object", got)
	}
}

func TestURLs(t *testing.T) {
	mem := store.NewMemoryStore()
	for _, u := range []string{"https://zeta.example.com", "https://alpha.example.com"} {
		if _, err := mem.AppendReport(context.Background(), u, nil); err != nil {
			t.Fatalf("AppendReport failed: %v", err)
		}
	}
	d := testDeps(t, mem, &fakeRunner{store: mem})

	rec := httptest.NewRecorder()
	URLs(d)(rec, httptest.NewRequest(http.MethodGet, "/lh/urls", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got []string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not a string array: %v", err)
	}
	want := []string{"https://alpha.example.com", "https://zeta.example.com"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("urls = %v, want %v", got, want)
	}
}

func TestCategoriesMetadata(t *testing.T) {
	mem := store.NewMemoryStore()
	d := testDeps(t, mem, &fakeRunner{store: mem})

	rec := httptest.NewRecorder()
	Categories(d)(rec, httptest.NewRequest(http.MethodGet, "/lh/categories", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got []lighthouse.CategoryMeta
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not category metadata: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("no category metadata returned")
	}
	for _, cat := range got {
		if cat.ID == "" || cat.Title == "" {
			t.Errorf("category with empty id or title: %+v", cat)
		}
	}
}

func TestAuditsMetadata(t *testing.T) {
	mem := store.NewMemoryStore()
	d := testDeps(t, mem, &fakeRunner{store: mem})

	rec := httptest.NewRecorder()
	Audits(d)(rec, httptest.NewRequest(http.MethodGet, "/lh/audits", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got []lighthouse.AuditMeta
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not audit metadata: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("no audit metadata returned")
	}
}

func TestUpdateScoresTriggersRefresh(t *testing.T) {
	mem := store.NewMemoryStore()
	d := testDeps(t, mem, &fakeRunner{store: mem})

	rec := httptest.NewRecorder()
	UpdateScores(d)(rec, httptest.NewRequest(http.MethodGet, "/cron/update_lighthouse_scores", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Update tasks scheduled") {
		t.Errorf("body = %q, want acknowledgement text", body)
	}
	if len(d.RefreshTrigger) != 1 {
		t.Errorf("refresh trigger holds %d signals, want 1", len(d.RefreshTrigger))
	}
}
