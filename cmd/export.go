package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/cobra"

	"github.com/leadscope/sitediag/internal/diagnose"
	"github.com/leadscope/sitediag/internal/report"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved results as CSV or PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		repo, err := report.NewRepository(resultsDir)
		if err != nil {
			return err
		}
		summaries, err := repo.List()
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			return fmt.Errorf("no saved results to export")
		}

		var results []*diagnose.Result
		for _, s := range summaries {
			r, err := repo.Get(s.Filename)
			if err != nil {
				logger.Warnw("skipping unreadable result", "filename", s.Filename, "error", err)
				continue
			}
			results = append(results, r)
		}

		switch format {
		case "csv":
			if output == "" {
				output = "diagnosis_export.csv"
			}
			err = exportCSV(output, results)
		case "pdf":
			if output == "" {
				output = "diagnosis_export.pdf"
			}
			err = exportPDF(output, results)
		default:
			return fmt.Errorf("unsupported format %q (use csv or pdf)", format)
		}
		if err != nil {
			return err
		}

		fmt.Printf("%s Exported %d results to %s\n", colorSuccess("✓"), len(results), output)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "csv", "Export format: csv or pdf")
	exportCmd.Flags().String("output", "", "Output file (defaults to diagnosis_export.<format>)")
}

func exportCSV(path string, results []*diagnose.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"url", "domain", "tech", "status", "load_time",
		"first_contentful_paint_ms", "console_error_count",
		"vulnerability_detected", "vulnerabilities", "technical_observation",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		fcp := ""
		if r.FirstContentfulPaint != nil {
			fcp = strconv.Itoa(*r.FirstContentfulPaint)
		}
		var vulns []string
		for _, v := range r.Vulnerabilities {
			vulns = append(vulns, v.Type+" "+v.Version)
		}
		record := []string{
			r.URL,
			r.Domain,
			r.Tech,
			string(r.Status),
			r.LoadTime,
			fcp,
			strconv.Itoa(r.ConsoleErrorCount),
			strconv.FormatBool(r.VulnerabilityDetected),
			strings.Join(vulns, "; "),
			r.TechnicalObservation,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func exportPDF(path string, results []*diagnose.Result) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Website Technical Risk Report", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")), "", 1, "", false, 0, "")
	pdf.Ln(3)

	// Summary section
	counts := make(map[diagnose.Status]int)
	for _, r := range results {
		counts[r.Status]++
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Sites: %d | Clean: %d | At Risk: %d | Timeout: %d | Error: %d",
		len(results), counts[diagnose.StatusClean], counts[diagnose.StatusAtRisk],
		counts[diagnose.StatusTimeout], counts[diagnose.StatusError]), "", 1, "", false, 0, "")
	pdf.Ln(5)

	// Per-site sections
	maxResults := 50
	for i, r := range results {
		if i == maxResults {
			pdf.SetFont("Arial", "I", 9)
			pdf.CellFormat(0, 6, fmt.Sprintf("... %d additional sites omitted ...", len(results)-maxResults), "", 1, "", false, 0, "")
			break
		}

		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(0, 7, fmt.Sprintf("%s - %s", r.Domain, strings.ToUpper(string(r.Status))), "", 1, "", true, 0, "")
		pdf.Ln(1)

		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("Tech: %s | Load: %s | Console errors: %d",
			r.Tech, r.LoadTime, r.ConsoleErrorCount), "", 1, "", false, 0, "")

		for _, v := range r.Vulnerabilities {
			pdf.MultiCell(0, 5, fmt.Sprintf("  Vulnerable: %s %s", v.Type, v.Version), "", "", false)
		}
		if r.TechnicalObservation != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, r.TechnicalObservation, "", "", false)
			pdf.SetFont("Arial", "", 9)
		}
		if r.Error != "" {
			pdf.MultiCell(0, 5, fmt.Sprintf("  Error: %s", r.Error), "", "", false)
		}
		pdf.Ln(2)
	}

	return pdf.OutputFileAndClose(path)
}
