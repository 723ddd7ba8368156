package cmd

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/leadscope/sitediag/internal/diagnose"
)

func TestExportCSV(t *testing.T) {
	fcp := 2100
	results := []*diagnose.Result{
		{
			URL:                  "https://example.com",
			Domain:               "example.com",
			Tech:                 "React 18.2.0",
			Status:               diagnose.StatusClean,
			LoadTime:             "2.1s",
			FirstContentfulPaint: &fcp,
		},
		{
			URL:                   "https://legacy.example.com",
			Domain:                "legacy.example.com",
			Tech:                  "jQuery 1.8.3",
			Status:                diagnose.StatusAtRisk,
			LoadTime:              "N/A",
			VulnerabilityDetected: true,
			Vulnerabilities: []diagnose.VulnFinding{
				{Type: "jquery_old", Version: "1.8.3"},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "export.csv")
	if err := exportCSV(path, results); err != nil {
		t.Fatalf("exportCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(records))
	}
	if records[0][0] != "url" {
		t.Errorf("header row = %v", records[0])
	}
	if records[1][5] != "2100" {
		t.Errorf("fcp column = %q, want 2100", records[1][5])
	}
	if records[2][8] != "jquery_old 1.8.3" {
		t.Errorf("vulnerabilities column = %q", records[2][8])
	}
}

func TestExportPDF(t *testing.T) {
	results := []*diagnose.Result{
		{
			URL:      "https://example.com",
			Domain:   "example.com",
			Tech:     "WordPress",
			Status:   diagnose.StatusAtRisk,
			LoadTime: "3.4s",
			Vulnerabilities: []diagnose.VulnFinding{
				{Type: "wordpress_old", Version: "5.2.1"},
			},
			TechnicalObservation: "The CMS build is several majors behind.",
		},
	}

	path := filepath.Join(t.TempDir(), "export.pdf")
	if err := exportPDF(path, results); err != nil {
		t.Fatalf("exportPDF: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat export: %v", err)
	}
	if info.Size() == 0 {
		t.Error("export file is empty")
	}
}
