package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lightkeep/lightkeep/internal/logger"
)

func okHandler() (http.Handler, *int) {
	calls := 0
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}), &calls
}

func TestForceSSL(t *testing.T) {
	tests := []struct {
		name         string
		host         string
		headers      map[string]string
		wantRedirect bool
	}{
		{
			name:         "plain http external request",
			host:         "lighthouse.example.com",
			headers:      map[string]string{"X-Forwarded-Proto": "http"},
			wantRedirect: true,
		},
		{
			name:         "https request passes",
			host:         "lighthouse.example.com",
			headers:      map[string]string{"X-Forwarded-Proto": "https"},
			wantRedirect: false,
		},
		{
			name:         "localhost passes",
			host:         "localhost:8080",
			headers:      map[string]string{"X-Forwarded-Proto": "http"},
			wantRedirect: false,
		},
		{
			name: "cron caller passes",
			host: "lighthouse.example.com",
			headers: map[string]string{
				"X-Forwarded-Proto": "http",
				"X-Appengine-Cron":  "true",
			},
			wantRedirect: false,
		},
		{
			name: "task queue caller passes",
			host: "lighthouse.example.com",
			headers: map[string]string{
				"X-Forwarded-Proto":     "http",
				"X-AppEngine-QueueName": "lighthouse-refresh",
			},
			wantRedirect: false,
		},
		{
			name:         "no forwarded proto passes",
			host:         "lighthouse.example.com",
			headers:      map[string]string{},
			wantRedirect: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, calls := okHandler()
			handler := ForceSSL(logger.NewNop())(next)

			req := httptest.NewRequest(http.MethodGet, "/lh/urls?x=1", nil)
			req.Host = tt.host
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if tt.wantRedirect {
				if rec.Code != http.StatusFound {
					t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
				}
				want := "https://" + tt.host + "/lh/urls?x=1"
				if loc := rec.Header().Get("Location"); loc != want {
					t.Errorf("Location = %q, want %q", loc, want)
				}
				if *calls != 0 {
					t.Errorf("next handler ran %d times on redirect, want 0", *calls)
				}
			} else {
				if rec.Code != http.StatusOK {
					t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
				}
				if *calls != 1 {
					t.Errorf("next handler ran %d times, want 1", *calls)
				}
			}
		})
	}
}

func TestRequireCronCaller(t *testing.T) {
	tests := []struct {
		name       string
		cronHeader string
		wantStatus int
		wantNext   int
	}{
		{
			name:       "without trusted header",
			cronHeader: "",
			wantStatus: http.StatusForbidden,
			wantNext:   0,
		},
		{
			name:       "with trusted header",
			cronHeader: "true",
			wantStatus: http.StatusOK,
			wantNext:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, calls := okHandler()
			handler := RequireCronCaller(logger.NewNop())(next)

			req := httptest.NewRequest(http.MethodGet, "/cron/update_lighthouse_scores", nil)
			if tt.cronHeader != "" {
				req.Header.Set("X-Appengine-Cron", tt.cronHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if *calls != tt.wantNext {
				t.Errorf("next handler ran %d times, want %d", *calls, tt.wantNext)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	next, _ := okHandler()
	handler := RateLimit(RateLimitConfig{Burst: 2, RefillPerIPPerMin: 1})(next)

	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/lh/newaudit", nil)
		r.RemoteAddr = "203.0.113.7:4242"
		return r
	}

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req())
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req())
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("exhausted bucket: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After header")
	}
}
