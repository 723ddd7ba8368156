package diagnose

import (
	"sort"
	"strings"
)

// MergeTechs folds live-introspection and static-matcher findings into one
// deduplicated list keyed by name, live findings first. A later finding only
// upgrades an entry from unversioned to versioned; confidence is not carried
// into the merged output.
func MergeTechs(live, static []TechFinding) []TechFinding {
	index := make(map[string]int)
	var merged []TechFinding

	fold := func(findings []TechFinding) {
		for _, f := range findings {
			i, ok := index[f.Name]
			if !ok {
				index[f.Name] = len(merged)
				merged = append(merged, TechFinding{Name: f.Name, Version: f.Version})
				continue
			}
			if f.Version != "" && merged[i].Version == "" {
				merged[i].Version = f.Version
			}
		}
	}

	fold(live)
	fold(static)
	return merged
}

// FormatTechLabel reduces the detected technologies, or failing that the
// vulnerability list, to a single human-readable label: up to three distinct
// names ordered by confidence and framework priority, versions appended when
// known. "Unknown" when nothing was detected.
func FormatTechLabel(vulns []VulnFinding, techs []TechFinding) string {
	if label := labelFromTechs(techs); label != "" {
		return label
	}
	if label := labelFromVulns(vulns); label != "" {
		return label
	}
	return "Unknown"
}

func labelFromTechs(techs []TechFinding) string {
	if len(techs) == 0 {
		return ""
	}

	ranked := make([]TechFinding, len(techs))
	copy(ranked, techs)
	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := ranked[i].Confidence.rank(), ranked[j].Confidence.rank()
		if ci != cj {
			return ci > cj
		}
		return priorityScore(ranked[i].Name) > priorityScore(ranked[j].Name)
	})

	var names []string
	for _, t := range ranked {
		if len(names) >= 3 {
			break
		}
		name := displayName(t.Name)
		if t.Version != "" {
			name += " " + t.Version
		}
		if labelContainsWord(names, name) {
			continue
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

func labelFromVulns(vulns []VulnFinding) string {
	if len(vulns) == 0 {
		return ""
	}
	first := vulns[0]

	name := "Unknown"
	for _, id := range displayNameOrder {
		if strings.Contains(strings.ToLower(first.Type), id) {
			name = displayNames[id]
			break
		}
	}
	if first.Version != "unknown" && first.Version != "" {
		name += " " + first.Version
	}
	return name
}

func priorityScore(name string) int {
	for i, id := range labelPriority {
		if id == name {
			return len(labelPriority) - i
		}
	}
	return 0
}

func displayName(id string) string {
	if name, ok := displayNames[id]; ok {
		return name
	}
	if id == "" {
		return id
	}
	return strings.ToUpper(id[:1]) + id[1:]
}

// labelContainsWord reports whether the first word of candidate already
// appears in one of the collected names, e.g. "React" vs "React 16.3.0".
func labelContainsWord(names []string, candidate string) bool {
	word := strings.SplitN(candidate, " ", 2)[0]
	for _, n := range names {
		if strings.Contains(n, word) {
			return true
		}
	}
	return false
}
