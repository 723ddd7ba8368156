package diagnose

import (
	"fmt"
	"net/url"
	"strings"
)

// Status is the terminal classification of one diagnosis run.
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusClean   Status = "clean"
	StatusAtRisk  Status = "at_risk"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

// Confidence ranks how a technology finding was obtained. Live runtime
// introspection yields high or medium, static markup matching always low.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// TechFinding is a single identified technology. Version is empty when the
// detector could not extract one.
type TechFinding struct {
	Name       string     `json:"name"`
	Version    string     `json:"version,omitempty"`
	Confidence Confidence `json:"confidence,omitempty"`
}

// VulnFinding is one deduplicated vulnerable-signature hit.
type VulnFinding struct {
	Type        string `json:"type"`
	Version     string `json:"version"`
	MatchedText string `json:"matched_text"`
}

// Result is the aggregate record produced by one diagnosis run. It is mutated
// only by that run and treated as immutable by downstream consumers.
type Result struct {
	URL                   string        `json:"url"`
	Domain                string        `json:"domain"`
	Tech                  string        `json:"tech"`
	Status                Status        `json:"status"`
	LoadTime              string        `json:"load_time"`
	FirstContentfulPaint  *int          `json:"first_contentful_paint_ms"`
	ConsoleErrors         []string      `json:"console_errors"`
	ConsoleErrorCount     int           `json:"console_error_count"`
	Vulnerabilities       []VulnFinding `json:"vulnerabilities"`
	VulnerabilityDetected bool          `json:"vulnerability_detected"`
	TechnicalObservation  string        `json:"technical_observation,omitempty"`
	Error                 string        `json:"error,omitempty"`
}

// NewResult returns an empty record for one run against url.
func NewResult(url string) *Result {
	return &Result{
		URL:             url,
		Status:          StatusUnknown,
		ConsoleErrors:   []string{},
		Vulnerabilities: []VulnFinding{},
	}
}

// ExtractDomain returns the host portion of rawURL with any "www." prefix
// stripped. Unparseable input is returned as-is.
func ExtractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	domain := parsed.Host
	if domain == "" {
		domain = strings.SplitN(parsed.Path, "/", 2)[0]
	}
	return strings.TrimPrefix(domain, "www.")
}

// FormatLoadTime renders an FCP millisecond value as a seconds string, or
// "N/A" when the measurement is unavailable.
func FormatLoadTime(fcpMS *int) string {
	if fcpMS == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1fs", float64(*fcpMS)/1000.0)
}

// assemble derives the presentation fields from the raw signals collected
// during the run. Pure; no I/O.
func (r *Result) assemble(techs []TechFinding) {
	r.Domain = ExtractDomain(r.URL)
	r.Tech = FormatTechLabel(r.Vulnerabilities, techs)
	r.ConsoleErrorCount = len(r.ConsoleErrors)
	r.LoadTime = FormatLoadTime(r.FirstContentfulPaint)
	r.VulnerabilityDetected = len(r.Vulnerabilities) > 0
}
