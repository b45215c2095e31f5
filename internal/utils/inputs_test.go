package utils

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// TestPrompterSharesBufferedInput verifies consecutive prompts read consecutive lines
func TestPrompterSharesBufferedInput(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  first \nsecond\n"), &out)

	first, err := p.ReadString("A: ")
	if err != nil || first != "first" {
		t.Fatalf("first = %q, %v", first, err)
	}
	second, err := p.ReadString("B: ")
	if err != nil || second != "second" {
		t.Fatalf("second = %q, %v", second, err)
	}
	if _, err := p.ReadString("C: "); !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput at EOF, got %v", err)
	}
	if out.String() != "A: B: C: " {
		t.Errorf("unexpected prompts: %q", out.String())
	}
}

// TestPromptYesNoWithReader verifies yes/no answers; anything but yes is no
func TestPromptYesNoWithReader(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"s\n", true},
		{"n\n", false},
		{"maybe\ny\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got := PromptYesNoWithReader("Add deadline?", strings.NewReader(tt.input), &out)
			if got != tt.want {
				t.Errorf("PromptYesNoWithReader(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
