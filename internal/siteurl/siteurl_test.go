package siteurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare host unchanged",
			input:    "https://example.com",
			expected: "https://example.com",
		},
		{
			name:     "trailing slash dropped",
			input:    "https://example.com/",
			expected: "https://example.com",
		},
		{
			name:     "affiliate path segment stripped",
			input:    "https://example.com/RF12345",
			expected: "https://example.com",
		},
		{
			name:     "affiliate query parameter stripped",
			input:    "https://example.com/?r_c=abc123",
			expected: "https://example.com",
		},
		{
			name:     "deep path with query and fragment",
			input:    "http://example.com/path/to/page?x=1#frag",
			expected: "http://example.com",
		},
		{
			name:     "port preserved",
			input:    "http://example.com:8080/promo",
			expected: "http://example.com:8080",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  https://example.com/GAME7  ",
			expected: "https://example.com",
		},
		{
			name:     "schemeless input falls back to naive strip",
			input:    "example.com/path?x=1",
			expected: "example.com/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"https://example.com/RF12345",
		"https://example.com/?r_c=abc",
		"http://example.com:8080/a/b/c",
		"example.com/path#x",
		"",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "input %q", input)
	}
}
