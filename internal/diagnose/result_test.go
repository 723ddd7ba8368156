package diagnose

import "testing"

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain host", "https://example.com", "example.com"},
		{"www stripped", "https://www.example.com", "example.com"},
		{"path ignored", "https://example.com/some/path?q=1", "example.com"},
		{"port kept", "http://localhost:8080/x", "localhost:8080"},
		{"schemeless", "example.com/path", "example.com"},
		{"schemeless www", "www.example.com", "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDomain(tt.url); got != tt.want {
				t.Errorf("ExtractDomain(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestFormatLoadTime(t *testing.T) {
	tests := []struct {
		name string
		fcp  *int
		want string
	}{
		{"missing", nil, "N/A"},
		{"sub second", intPtr(850), "0.8s"},
		{"rounded down", intPtr(1234), "1.2s"},
		{"rounded up", intPtr(1250), "1.2s"},
		{"whole seconds", intPtr(3000), "3.0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatLoadTime(tt.fcp); got != tt.want {
				t.Errorf("FormatLoadTime = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewResultDefaults(t *testing.T) {
	r := NewResult("https://example.com")
	if r.Status != StatusUnknown {
		t.Errorf("initial status = %q, want %q", r.Status, StatusUnknown)
	}
	if r.ConsoleErrors == nil || r.Vulnerabilities == nil {
		t.Error("slices must be initialized so JSON emits [] rather than null")
	}
}

func TestAssemble(t *testing.T) {
	r := NewResult("https://www.example.com/page")
	r.ConsoleErrors = []string{"TypeError: x is undefined (app.js:10)"}
	r.Vulnerabilities = []VulnFinding{{Type: "jquery_old", Version: "1.8.3"}}
	r.FirstContentfulPaint = intPtr(2100)
	r.assemble([]TechFinding{{Name: "react", Version: "18.2.0"}})

	if r.Domain != "example.com" {
		t.Errorf("Domain = %q", r.Domain)
	}
	if r.Tech != "React 18.2.0" {
		t.Errorf("Tech = %q", r.Tech)
	}
	if r.ConsoleErrorCount != 1 {
		t.Errorf("ConsoleErrorCount = %d", r.ConsoleErrorCount)
	}
	if r.LoadTime != "2.1s" {
		t.Errorf("LoadTime = %q", r.LoadTime)
	}
	if !r.VulnerabilityDetected {
		t.Error("VulnerabilityDetected = false, want true")
	}
}

func TestConfidenceRank(t *testing.T) {
	if ConfidenceHigh.rank() <= ConfidenceMedium.rank() {
		t.Error("high must outrank medium")
	}
	if ConfidenceMedium.rank() <= ConfidenceLow.rank() {
		t.Error("medium must outrank low")
	}
	if Confidence("bogus").rank() != 0 {
		t.Error("unknown confidence must rank lowest")
	}
}

func intPtr(n int) *int { return &n }
