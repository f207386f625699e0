package utils

import (
	"testing"
)

func TestSanitizeObjectKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "ascii only",
			input:    "videos/my-movie.m2ts",
			expected: "videos/my-movie.m2ts",
		},
		{
			name:     "with spaces",
			input:    "file with spaces.pdf",
			expected: "file-with-spaces.pdf",
		},
		{
			name:     "leading slash",
			input:    "/videos/clip.mp4",
			expected: "videos/clip.mp4",
		},
		{
			name:     "query metacharacters",
			input:    "report?v=2#final.pdf",
			expected: "report-v=2-final.pdf",
		},
		{
			name:     "with latin accents",
			input:    "résumé.pdf",
			expected: "resume.pdf",
		},
		{
			name:     "with mixed latin accents",
			input:    "Café Ñandú.doc",
			expected: "Cafe-Nandu.doc",
		},
		{
			name:     "with emojis",
			input:    "document📄.pdf",
			expected: "document-.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeObjectKey(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeObjectKey(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
