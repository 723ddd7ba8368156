package diagnose

import (
	"reflect"
	"testing"
)

func TestMergeTechs(t *testing.T) {
	tests := []struct {
		name   string
		live   []TechFinding
		static []TechFinding
		want   []TechFinding
	}{
		{
			name:   "static version fills live gap",
			live:   []TechFinding{{Name: "react", Confidence: ConfidenceHigh}},
			static: []TechFinding{{Name: "react", Version: "16.3.0", Confidence: ConfidenceLow}},
			want:   []TechFinding{{Name: "react", Version: "16.3.0"}},
		},
		{
			name:   "live version wins over static",
			live:   []TechFinding{{Name: "jquery", Version: "3.6.0", Confidence: ConfidenceHigh}},
			static: []TechFinding{{Name: "jquery", Version: "1.8", Confidence: ConfidenceLow}},
			want:   []TechFinding{{Name: "jquery", Version: "3.6.0"}},
		},
		{
			name:   "disjoint sets concatenate live first",
			live:   []TechFinding{{Name: "react", Version: "18.2.0"}},
			static: []TechFinding{{Name: "wordpress"}},
			want:   []TechFinding{{Name: "react", Version: "18.2.0"}, {Name: "wordpress"}},
		},
		{
			name: "static duplicates collapse",
			static: []TechFinding{
				{Name: "moment"}, {Name: "moment"},
			},
			want: []TechFinding{{Name: "moment"}},
		},
		{
			name: "nothing in yields nothing out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeTechs(tt.live, tt.static)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeTechs = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatTechLabel(t *testing.T) {
	tests := []struct {
		name  string
		vulns []VulnFinding
		techs []TechFinding
		want  string
	}{
		{
			name: "nothing detected",
			want: "Unknown",
		},
		{
			name:  "single versioned tech",
			techs: []TechFinding{{Name: "react", Version: "18.2.0"}},
			want:  "React 18.2.0",
		},
		{
			name: "framework priority orders equal confidence",
			techs: []TechFinding{
				{Name: "jquery"},
				{Name: "react", Version: "18.2.0"},
				{Name: "wordpress"},
				{Name: "lodash"},
			},
			want: "React 18.2.0, WordPress, jQuery",
		},
		{
			name: "confidence outranks priority",
			techs: []TechFinding{
				{Name: "react", Confidence: ConfidenceLow},
				{Name: "jquery", Version: "3.6.0", Confidence: ConfidenceHigh},
			},
			want: "jQuery 3.6.0, React",
		},
		{
			name:  "vulnerability names the label when no tech survived",
			vulns: []VulnFinding{{Type: "jquery_old", Version: "1.8.3"}},
			want:  "jQuery 1.8.3",
		},
		{
			name:  "unknown vulnerability version is omitted",
			vulns: []VulnFinding{{Type: "wordpress_old", Version: "unknown"}},
			want:  "WordPress",
		},
		{
			name:  "tech label beats vulnerability label",
			vulns: []VulnFinding{{Type: "jquery_old", Version: "1.8.3"}},
			techs: []TechFinding{{Name: "wordpress"}},
			want:  "WordPress",
		},
		{
			name: "unlisted id gets capitalized",
			techs: []TechFinding{
				{Name: "htmx"},
			},
			want: "Htmx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTechLabel(tt.vulns, tt.techs); got != tt.want {
				t.Errorf("FormatTechLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLabelContainsWord(t *testing.T) {
	if !labelContainsWord([]string{"React 16.3.0"}, "React") {
		t.Error("bare name should collide with versioned entry")
	}
	if labelContainsWord([]string{"Next.js"}, "React 18.2.0") {
		t.Error("distinct names should not collide")
	}
}
