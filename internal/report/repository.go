package report

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/leadscope/sitediag/internal/diagnose"
	"github.com/leadscope/sitediag/internal/shared/constants"
	sharedErrors "github.com/leadscope/sitediag/internal/shared/errors"
)

// Summary is the listing view of one persisted diagnosis.
type Summary struct {
	Filename              string          `json:"filename"`
	URL                   string          `json:"url"`
	Domain                string          `json:"domain"`
	Tech                  string          `json:"tech"`
	Status                diagnose.Status `json:"status"`
	LoadTime              string          `json:"load_time"`
	ConsoleErrorCount     int             `json:"console_error_count"`
	VulnerabilityDetected bool            `json:"vulnerability_detected"`
	VulnerabilitiesCount  int             `json:"vulnerabilities_count"`
	Modified              time.Time       `json:"modified"`
}

// Repository persists diagnosis results as JSON files in a results
// directory, one file per diagnosed site keyed by a URL-derived filename.
type Repository struct {
	resultsDir string
	mu         sync.RWMutex
}

// NewRepository ensures resultsDir exists and returns a repository over it.
func NewRepository(resultsDir string) (*Repository, error) {
	if resultsDir == "" {
		return nil, fmt.Errorf("results directory cannot be empty")
	}
	if err := os.MkdirAll(resultsDir, constants.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &Repository{resultsDir: resultsDir}, nil
}

// Dir returns the repository's results directory.
func (r *Repository) Dir() string {
	return r.resultsDir
}

// Save writes the result to its URL-derived file, overwriting any previous
// diagnosis of the same site, and returns the filename used.
func (r *Repository) Save(result *diagnose.Result) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	filename := Filename(result.URL)
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal diagnosis result: %w", err)
	}

	path := filepath.Join(r.resultsDir, filename)
	if err := os.WriteFile(path, data, constants.DefaultFilePerm); err != nil {
		return "", fmt.Errorf("failed to save diagnosis result: %w", err)
	}
	return filename, nil
}

// List returns summaries of all saved results, newest first. Files that do
// not parse are skipped.
func (r *Repository) List() ([]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.resultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		result, err := r.load(filepath.Join(r.resultsDir, entry.Name()))
		if err != nil {
			continue
		}
		summaries = append(summaries, Summary{
			Filename:              entry.Name(),
			URL:                   result.URL,
			Domain:                result.Domain,
			Tech:                  result.Tech,
			Status:                result.Status,
			LoadTime:              result.LoadTime,
			ConsoleErrorCount:     result.ConsoleErrorCount,
			VulnerabilityDetected: result.VulnerabilityDetected,
			VulnerabilitiesCount:  len(result.Vulnerabilities),
			Modified:              info.ModTime(),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Modified.After(summaries[j].Modified)
	})
	return summaries, nil
}

// Get loads one saved result by filename. The filename must be a bare name;
// anything path-like is rejected.
func (r *Repository) Get(filename string) (*diagnose.Result, error) {
	if !ValidFilename(filename) {
		return nil, sharedErrors.ErrInvalidFilename
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	path := filepath.Join(r.resultsDir, filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, sharedErrors.ErrResultNotFound
	}
	return r.load(path)
}

func (r *Repository) load(path string) (*diagnose.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var result diagnose.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse diagnosis result: %w", err)
	}
	return &result, nil
}

// ValidFilename rejects path traversal and separators.
func ValidFilename(filename string) bool {
	if filename == "" || strings.Contains(filename, "..") {
		return false
	}
	return !strings.ContainsAny(filename, `/\`)
}

// Filename derives the storage filename for a diagnosed URL:
// diagnosis_<sanitized domain>.json, with a timestamp fallback when the URL
// yields nothing usable.
func Filename(rawURL string) string {
	domain := ""
	if parsed, err := url.Parse(rawURL); err == nil {
		domain = parsed.Host
		if domain == "" {
			domain = strings.SplitN(parsed.Path, "/", 2)[0]
		}
	}
	domain = strings.TrimPrefix(domain, "www.")

	var b strings.Builder
	for _, c := range domain {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	stem := b.String()
	if len(stem) > constants.ResultFilenameStemLimit {
		stem = stem[:constants.ResultFilenameStemLimit]
	}
	if strings.Trim(stem, "_") == "" {
		return fmt.Sprintf("diagnosis_%d.json", time.Now().Unix())
	}
	return fmt.Sprintf("diagnosis_%s.json", stem)
}
