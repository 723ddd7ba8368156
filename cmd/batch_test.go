package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/leadscope/sitediag/internal/diagnose"
)

func TestReadURLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := `# production sites
example.com

https://other.example.org
  spaced.example.net
# trailing comment
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	urls, err := readURLFile(path)
	if err != nil {
		t.Fatalf("readURLFile: %v", err)
	}

	want := []string{"example.com", "https://other.example.org", "spaced.example.net"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("urls = %v, want %v", urls, want)
	}
}

func TestReadURLFileMissing(t *testing.T) {
	if _, err := readURLFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPrintBatchSummaryHandlesNilResults(t *testing.T) {
	// A cancelled run can leave nil slots; the summary must not panic.
	printBatchSummary([]*diagnose.Result{nil, {Status: diagnose.StatusClean}})
}
