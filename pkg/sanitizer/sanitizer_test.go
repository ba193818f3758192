package sanitizer

import (
	"reflect"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Guest Lecture  ",
			want:  "Guest Lecture",
		},
		{
			name:  "multiple spaces between words",
			input: "Workshop   on  AI/ML",
			want:  "Workshop on AI/ML",
		},
		{
			name:  "tabs and newlines",
			input: "Jane\t\nSmith",
			want:  "Jane Smith",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Café & Spa™ ",
			want:  "Café & Spa™",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeText(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := SanitizeText(got); again != got {
				t.Errorf("SanitizeText not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSanitizeEmail(t *testing.T) {
	if got := SanitizeEmail("  John.Doe@College.EDU "); got != "john.doe@college.edu" {
		t.Errorf("SanitizeEmail() = %q", got)
	}
	if got := SanitizeEmail(""); got != "" {
		t.Errorf("SanitizeEmail(\"\") = %q", got)
	}
}

func TestSanitizeID(t *testing.T) {
	if got := SanitizeID(" r101\n"); got != "r101" {
		t.Errorf("SanitizeID() = %q", got)
	}
}

func TestSanitizeFeature(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Projector", "projector"},
		{"Smart Board", "smart-board"},
		{"  audio_system ", "audio-system"},
		{"--whiteboard--", "whiteboard"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeFeature(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFeature(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeSlice(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "remove duplicates after normalization",
			input: []string{"Projector", "projector", " PROJECTOR "},
			want:  []string{"projector"},
		},
		{
			name:  "filter empty strings",
			input: []string{"whiteboard", "", "  ", "computers"},
			want:  []string{"whiteboard", "computers"},
		},
		{
			name:  "empty input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeSlice(tt.input, SanitizeFeature)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SanitizeSlice(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPipeline_Apply(t *testing.T) {
	p := Pipeline{SanitizeText, SanitizeEmail}
	if got := p.Apply("  A@B.CO "); got != "a@b.co" {
		t.Errorf("Pipeline.Apply() = %q", got)
	}
}
