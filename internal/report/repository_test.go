package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leadscope/sitediag/internal/diagnose"
	sharedErrors "github.com/leadscope/sitediag/internal/shared/errors"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "simple domain",
			url:  "https://example.com",
			want: "diagnosis_example_com.json",
		},
		{
			name: "www stripped",
			url:  "https://www.example.com/path",
			want: "diagnosis_example_com.json",
		},
		{
			name: "port replaced",
			url:  "http://localhost:8080",
			want: "diagnosis_localhost_8080.json",
		},
		{
			name: "hyphen kept",
			url:  "https://my-site.example.org",
			want: "diagnosis_my-site_example_org.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filename(tt.url); got != tt.want {
				t.Errorf("Filename(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestFilenameStemLimit(t *testing.T) {
	long := "https://" + strings.Repeat("a", 80) + ".com"
	got := Filename(long)
	stem := strings.TrimSuffix(strings.TrimPrefix(got, "diagnosis_"), ".json")
	if len(stem) != 50 {
		t.Errorf("stem length = %d, want 50", len(stem))
	}
}

func TestFilenameFallback(t *testing.T) {
	got := Filename("???")
	if !strings.HasPrefix(got, "diagnosis_") || !strings.HasSuffix(got, ".json") {
		t.Errorf("fallback filename %q has wrong shape", got)
	}
	stem := strings.TrimSuffix(strings.TrimPrefix(got, "diagnosis_"), ".json")
	if strings.Trim(stem, "0123456789") != "" {
		t.Errorf("fallback stem %q is not a timestamp", stem)
	}
}

func TestValidFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"diagnosis_example_com.json", true},
		{"", false},
		{"../etc/passwd", false},
		{"sub/dir.json", false},
		{`win\dir.json`, false},
	}

	for _, tt := range tests {
		if got := ValidFilename(tt.filename); got != tt.want {
			t.Errorf("ValidFilename(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestRepositorySaveAndGet(t *testing.T) {
	repo, err := NewRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}

	result := diagnose.NewResult("https://example.com")
	result.Domain = "example.com"
	result.Tech = "React 18.2.0"
	result.Status = diagnose.StatusClean
	result.LoadTime = "1.2s"

	filename, err := repo.Save(result)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filename != "diagnosis_example_com.json" {
		t.Errorf("Save returned %q", filename)
	}

	loaded, err := repo.Get(filename)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded.URL != result.URL || loaded.Tech != result.Tech || loaded.Status != result.Status {
		t.Errorf("loaded result %+v does not match saved %+v", loaded, result)
	}
}

func TestRepositoryDir(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewRepository(dir)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	if repo.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", repo.Dir(), dir)
	}
	if _, err := NewRepository(""); err == nil {
		t.Error("NewRepository(\"\") succeeded, want error")
	}
}

func TestRepositoryGetRejectsTraversal(t *testing.T) {
	repo, err := NewRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}

	if _, err := repo.Get("../secrets.json"); !errors.Is(err, sharedErrors.ErrInvalidFilename) {
		t.Errorf("Get traversal error = %v, want ErrInvalidFilename", err)
	}
	if _, err := repo.Get("diagnosis_missing.json"); !errors.Is(err, sharedErrors.ErrResultNotFound) {
		t.Errorf("Get missing error = %v, want ErrResultNotFound", err)
	}
}

func TestRepositoryListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewRepository(dir)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}

	first := diagnose.NewResult("https://first.com")
	first.Status = diagnose.StatusClean
	if _, err := repo.Save(first); err != nil {
		t.Fatalf("Save first: %v", err)
	}

	// ModTime granularity on some filesystems is a full second.
	time.Sleep(1100 * time.Millisecond)

	second := diagnose.NewResult("https://second.com")
	second.Status = diagnose.StatusAtRisk
	second.Vulnerabilities = []diagnose.VulnFinding{{Type: "jquery_old", Version: "1.8"}}
	second.VulnerabilityDetected = true
	if _, err := repo.Save(second); err != nil {
		t.Fatalf("Save second: %v", err)
	}

	summaries, err := repo.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("List returned %d summaries, want 2", len(summaries))
	}
	if summaries[0].URL != "https://second.com" {
		t.Errorf("newest summary URL = %q, want https://second.com", summaries[0].URL)
	}
	if summaries[0].VulnerabilitiesCount != 1 || !summaries[0].VulnerabilityDetected {
		t.Errorf("newest summary vulnerability fields = %+v", summaries[0])
	}
}
