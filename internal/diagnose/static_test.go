package diagnose

import "testing"

func TestMatchStatic(t *testing.T) {
	html := `<html><head>
<script src="https://unpkg.com/react/16.8.0/react.min.js"></script>
<script src="/assets/jquery.min.js"></script>
</head><body class="wp-content"></body></html>`

	findings := MatchStatic(html)

	got := make(map[string]TechFinding)
	for _, f := range findings {
		got[f.Name] = f
	}

	react, ok := got["react"]
	if !ok {
		t.Fatal("react not detected")
	}
	if react.Version != "16.8.0" {
		t.Errorf("react version = %q, want 16.8.0", react.Version)
	}
	if react.Confidence != ConfidenceLow {
		t.Errorf("react confidence = %q, want low", react.Confidence)
	}

	jq, ok := got["jquery"]
	if !ok {
		t.Fatal("jquery not detected")
	}
	if jq.Version != "" {
		t.Errorf("jquery version = %q, want empty", jq.Version)
	}

	if _, ok := got["wordpress"]; !ok {
		t.Error("wordpress not detected from wp-content marker")
	}
}

func TestMatchStaticEmpty(t *testing.T) {
	if findings := MatchStatic(""); len(findings) != 0 {
		t.Errorf("empty markup yielded %d findings", len(findings))
	}
	if findings := MatchStatic("<html><body>plain text page</body></html>"); len(findings) != 0 {
		t.Errorf("plain page yielded %v", findings)
	}
}

func TestMatchStaticCaseInsensitive(t *testing.T) {
	findings := MatchStatic(`<SCRIPT SRC="/JS/JQUERY.MIN.JS"></SCRIPT>`)
	if len(findings) != 1 || findings[0].Name != "jquery" {
		t.Errorf("findings = %v, want single jquery", findings)
	}
}

func TestMatchStaticStopsAtFirstVersionedHit(t *testing.T) {
	// Two versioned copies of the same library: only the first is reported.
	html := `<script src="/react/16.8.0/react.min.js"></script>
<script src="/react/17.0.2/react.min.js"></script>`

	findings := MatchStatic(html)

	var reacts []TechFinding
	for _, f := range findings {
		if f.Name == "react" {
			reacts = append(reacts, f)
		}
	}
	if len(reacts) != 1 {
		t.Fatalf("got %d react findings, want 1", len(reacts))
	}
	if reacts[0].Version != "16.8.0" {
		t.Errorf("react version = %q, want 16.8.0", reacts[0].Version)
	}
}
