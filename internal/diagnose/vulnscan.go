package diagnose

import (
	"regexp"
	"strings"

	"github.com/leadscope/sitediag/internal/shared/constants"
)

var (
	versionAnywhere = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

	// jqueryCoreFile recognizes the core library filename shape
	// (jquery-1.8.3.min.js, jquery.1.11.0.js) at the start of the guard
	// window.
	jqueryCoreFile = regexp.MustCompile(`^jquery[.-][0-9][0-9.]*(?:[.-]min)?\.js`)
)

// jqueryGuardLiterals accept a jQuery signature hit only when the match site
// refers to the core library file rather than a plugin that mentions jquery
// in its own filename.
var jqueryGuardLiterals = []string{"jquery.js", "jquery.min.js", "jquery/", "/jquery"}

const vulnContextWindow = 50

// ScanVulnerabilities scans rendered markup against the vulnerability
// signature catalog and returns deduplicated findings in scan order.
//
// Only the first qualifying match per signature is kept; a second instance of
// the same technology at a different version on the page is not reported.
func ScanVulnerabilities(html string) []VulnFinding {
	lower := lowerASCII(html)
	seen := make(map[string]struct{})
	var findings []VulnFinding

	for _, sig := range vulnScanOrder {
		for _, loc := range sig.re.FindAllStringIndex(lower, -1) {
			ctxStart := loc[0] - vulnContextWindow
			if ctxStart < 0 {
				ctxStart = 0
			}
			ctxEnd := loc[1] + vulnContextWindow
			if ctxEnd > len(lower) {
				ctxEnd = len(lower)
			}

			version := "unknown"
			if vm := versionAnywhere.FindString(lower[ctxStart:ctxEnd]); vm != "" {
				version = vm
			}

			key, ok := dedupKey(sig.key, version, lower, loc[0])
			if !ok {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			findings = append(findings, VulnFinding{
				Type:        sig.key,
				Version:     version,
				MatchedText: clip(html[loc[0]:loc[1]], constants.MatchedTextLimit),
			})
			break
		}
	}
	return findings
}

// dedupKey derives the deduplication key for a signature hit. The second
// return value is false when the hit must be discarded (jQuery plugin guard).
func dedupKey(sigKey, version, lower string, matchStart int) (string, bool) {
	switch {
	case strings.Contains(sigKey, "angularjs"):
		return "angularjs_" + version, true

	case strings.Contains(sigKey, "jquery") && !strings.Contains(sigKey, "ui"):
		window := clip(lower[matchStart:], constants.MatchedTextLimit)
		if !jqueryWindowIsCoreFile(window) {
			return "", false
		}
		return "jquery_" + version, true

	case strings.Contains(sigKey, "wordpress"),
		strings.Contains(sigKey, "drupal"),
		strings.Contains(sigKey, "joomla"):
		// CMS signatures dedup on the technology alone, version ignored.
		return strings.TrimSuffix(sigKey, "_old"), true

	default:
		if version == "unknown" {
			return sigKey, true
		}
		return sigKey + "_" + version, true
	}
}

func jqueryWindowIsCoreFile(window string) bool {
	for _, lit := range jqueryGuardLiterals {
		if strings.Contains(window, lit) {
			return true
		}
	}
	return jqueryCoreFile.MatchString(window)
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// lowerASCII lowercases ASCII letters only, so byte offsets into the lowered
// string remain valid in the original markup.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
