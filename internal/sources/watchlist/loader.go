package watchlist

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader reads the optional watchlist file: a YAML list of URLs that the
// refresh fan-out keeps audited even before any report exists for them.
type Loader struct {
	filePath string
}

// config is the watchlist file structure.
type config struct {
	URLs []string `yaml:"urls"`
}

// NewLoader creates a watchlist loader for the given file.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the watchlist. Entries that are empty or do not
// look like HTTP(S) URLs are dropped.
func (l *Loader) Load() ([]string, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist file: %w", err)
	}

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist yaml: %w", err)
	}

	urls := make([]string, 0, len(cfg.URLs))
	for _, raw := range cfg.URLs {
		u := strings.TrimSpace(raw)
		if u == "" || !strings.HasPrefix(u, "http") {
			continue
		}
		urls = append(urls, u)
	}

	return urls, nil
}
