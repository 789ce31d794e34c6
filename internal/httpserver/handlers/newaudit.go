package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/lightkeep/lightkeep/internal/httpserver/deps"
	"github.com/lightkeep/lightkeep/internal/logger"
)

// maxAuditBody bounds the request body read for URL resolution.
const maxAuditBody = 1 << 20

// NewAudit runs a fresh audit for a URL supplied as a JSON body field, a
// query parameter, or a raw-body JSON string, in that priority order.
// Audit failures are swallowed: the caller gets 201 with an empty object,
// never an audit error.
func NewAudit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := resolveURL(r)
		if url == "" {
			writeError(w, http.StatusBadRequest, "No url provided.")
			return
		}

		d.Logger.Info("new audit requested", logger.String("url", url))

		if outcome := d.Runner.Run(r.Context(), url); outcome.OK() {
			writeJSON(w, http.StatusCreated, outcome.Report)
			return
		}
		writeJSON(w, http.StatusCreated, struct{}{})
	}
}

// resolveURL tries the three accepted URL carriers in priority order:
// structured body field, query parameter, raw-body JSON string.
func resolveURL(r *http.Request) string {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxAuditBody))
	if err != nil {
		body = nil
	}

	var structured struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.URL != "" {
		return strings.TrimSpace(structured.URL)
	}

	if q := strings.TrimSpace(r.URL.Query().Get("url")); q != "" {
		return q
	}

	var rawString string
	if err := json.Unmarshal(body, &rawString); err == nil {
		return strings.TrimSpace(rawString)
	}

	return ""
}
