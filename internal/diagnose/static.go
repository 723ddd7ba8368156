package diagnose

import (
	"regexp"
	"strings"
)

// versionNearMatch finds a version-shaped substring preceded by a delimiter
// (v, whitespace, slash or dash), as emitted by typical asset URLs.
var versionNearMatch = regexp.MustCompile(`[v\s/-](\d+\.\d+(?:\.\d+)?)`)

const versionWindow = 30

// MatchStatic scans the rendered markup, treated as a flat string, against
// the technology catalog. Every finding carries confidence=low. For each
// technology the scan stops at the first versioned match; unversioned
// matches are recorded and scanning continues.
//
// Known limitation, kept intentionally: a page loading two versions of the
// same library yields only the first versioned instance.
func MatchStatic(html string) []TechFinding {
	lower := strings.ToLower(html)
	var findings []TechFinding

	for _, tp := range techCatalog {
		for _, loc := range tp.re.FindAllStringIndex(lower, -1) {
			end := loc[1] + versionWindow
			if end > len(lower) {
				end = len(lower)
			}
			window := lower[loc[0]:end]

			version := ""
			if vm := versionNearMatch.FindStringSubmatch(window); vm != nil {
				version = vm[1]
			}

			findings = append(findings, TechFinding{
				Name:       tp.name,
				Version:    version,
				Confidence: ConfidenceLow,
			})

			if version != "" {
				break
			}
		}
	}
	return findings
}
