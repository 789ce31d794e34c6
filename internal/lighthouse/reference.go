package lighthouse

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// CategoryMeta is the static metadata served for one audit category.
type CategoryMeta struct {
	Title             string `json:"title"`
	ID                string `json:"id"`
	ManualDescription string `json:"manualDescription"`
}

// AuditMeta is the static metadata served for one individual check.
type AuditMeta struct {
	Title       string `json:"title"`
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Reference holds the category and audit metadata extracted from a bundled
// reference Lighthouse report. It never touches the store; the metadata
// endpoints are static.
type Reference struct {
	categories []CategoryMeta
	audits     []AuditMeta
}

type rawReference struct {
	Categories map[string]struct {
		Title             string `json:"title"`
		ID                string `json:"id"`
		ManualDescription string `json:"manualDescription"`
	} `json:"categories"`
	Audits map[string]struct {
		Title       string `json:"title"`
		ID          string `json:"id"`
		Description string `json:"description"`
	} `json:"audits"`
}

// LoadReference reads and parses the bundled reference report.
func LoadReference(path string) (*Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference report: %w", err)
	}

	var raw rawReference
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse reference report: %w", err)
	}

	ref := &Reference{
		categories: make([]CategoryMeta, 0, len(raw.Categories)),
		audits:     make([]AuditMeta, 0, len(raw.Audits)),
	}
	for _, cat := range raw.Categories {
		ref.categories = append(ref.categories, CategoryMeta{
			Title:             cat.Title,
			ID:                cat.ID,
			ManualDescription: cat.ManualDescription,
		})
	}
	for _, audit := range raw.Audits {
		ref.audits = append(ref.audits, AuditMeta{
			Title:       audit.Title,
			ID:          audit.ID,
			Description: audit.Description,
		})
	}

	// Maps iterate in random order; keep the served lists stable.
	sort.Slice(ref.categories, func(i, j int) bool { return ref.categories[i].ID < ref.categories[j].ID })
	sort.Slice(ref.audits, func(i, j int) bool { return ref.audits[i].ID < ref.audits[j].ID })

	return ref, nil
}

// Categories returns the category metadata list.
func (r *Reference) Categories() []CategoryMeta { return r.categories }

// Audits returns the individual check metadata list.
func (r *Reference) Audits() []AuditMeta { return r.audits }
