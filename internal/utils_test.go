package internal

import (
	"testing"

	"github.com/google/uuid"
)

func TestGenerateRequestID(t *testing.T) {
	first := GenerateRequestID()
	second := GenerateRequestID()

	if first == second {
		t.Errorf("Expected unique request IDs, got %s twice", first)
	}

	if _, err := uuid.Parse(first); err != nil {
		t.Errorf("Request ID %q is not a UUID: %v", first, err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"resilient", "resilient"},
		{"hello world", "hello_world"},
		{"a/b\\c", "a_b_c"},
		{"ثابت قدم", "ثابت_قدم"},
		{"id-123_x", "id-123_x"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
