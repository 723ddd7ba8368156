package diagnose

import (
	"reflect"
	"strings"
	"testing"
)

func TestScanVulnerabilitiesJQueryCoreFile(t *testing.T) {
	html := `<script src="https://code.jquery.com/jquery-1.8.3.min.js"></script>`

	findings := ScanVulnerabilities(html)

	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1: %v", len(findings), findings)
	}
	f := findings[0]
	if f.Type != "jquery_old" {
		t.Errorf("type = %q, want jquery_old", f.Type)
	}
	if f.Version != "1.8.3" {
		t.Errorf("version = %q, want 1.8.3", f.Version)
	}
	if !strings.HasPrefix(f.MatchedText, "jquery-1.8") {
		t.Errorf("matched text = %q", f.MatchedText)
	}
}

func TestScanVulnerabilitiesIgnoresJQueryPlugins(t *testing.T) {
	// A plugin bundle carrying an old-looking version in its own filename
	// must not count as a vulnerable jQuery core.
	html := `<script src="/plugins/jquery-1.8.custom.bundle.js"></script>`

	if findings := ScanVulnerabilities(html); len(findings) != 0 {
		t.Errorf("plugin filename yielded findings: %v", findings)
	}

	// An unversioned plugin filename starting with "jquery." is equally
	// not a core file.
	html = `<script src="jquery.validate.min.js"></script>`
	if findings := ScanVulnerabilities(html); len(findings) != 0 {
		t.Errorf("jquery.validate yielded findings: %v", findings)
	}
}

func TestScanVulnerabilitiesAngularDedup(t *testing.T) {
	// The same AngularJS build referenced twice collapses to one finding,
	// and the broad fallback signature must not add a second one.
	html := `<script src="/a/angular.min.js?v=1.5"></script>
<script src="/b/angular.min.js?v=1.5"></script>`

	findings := ScanVulnerabilities(html)

	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1: %v", len(findings), findings)
	}
	if findings[0].Type != "angularjs_v1_5" {
		t.Errorf("type = %q, want angularjs_v1_5", findings[0].Type)
	}
	if findings[0].Version != "1.5" {
		t.Errorf("version = %q, want 1.5", findings[0].Version)
	}
}

func TestScanVulnerabilitiesCMSDedupIgnoresVersion(t *testing.T) {
	html := `<link href="/wp-includes/css/dist/block-library/style.css?ver=5.2.1" rel="stylesheet">`

	findings := ScanVulnerabilities(html)

	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1: %v", len(findings), findings)
	}
	if findings[0].Type != "wordpress_old" {
		t.Errorf("type = %q, want wordpress_old", findings[0].Type)
	}
	if findings[0].Version != "5.2.1" {
		t.Errorf("version = %q, want 5.2.1", findings[0].Version)
	}
}

func TestScanVulnerabilitiesMatchedTextLimit(t *testing.T) {
	html := `<script src="/js/jquery-1.9.0.min.js"></script>`
	findings := ScanVulnerabilities(html)
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	if len(findings[0].MatchedText) > 100 {
		t.Errorf("matched text length = %d, want <= 100", len(findings[0].MatchedText))
	}
}

func TestScanVulnerabilitiesClean(t *testing.T) {
	html := `<script src="https://code.jquery.com/jquery-3.6.0.min.js"></script>
<script src="/react/18.2.0/react.min.js"></script>`

	if findings := ScanVulnerabilities(html); len(findings) != 0 {
		t.Errorf("modern stack yielded findings: %v", findings)
	}
}

func TestScanVulnerabilitiesIdempotent(t *testing.T) {
	html := `<script src="/js/jquery-1.8.3.min.js"></script>
<link href="/wp-includes/css/style.css?ver=5.2.1">`

	first := ScanVulnerabilities(html)
	second := ScanVulnerabilities(html)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated scans differ: %v vs %v", first, second)
	}
	if len(first) != 2 {
		t.Errorf("got %d findings, want 2: %v", len(first), first)
	}
}

func TestLowerASCIIPreservesOffsets(t *testing.T) {
	in := "AbÉcd" // multibyte rune must survive untouched
	out := lowerASCII(in)
	if len(out) != len(in) {
		t.Fatalf("length changed: %d vs %d", len(out), len(in))
	}
	if out != "abÉcd" {
		t.Errorf("lowerASCII = %q", out)
	}
}
