package debug

import (
	"strings"
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{"no depth", 0, "post", nil, "post\n"},
		{"depth 1", 1, "block", nil, "  block\n"},
		{"with args", 2, "Block[%d] type=%q", []any{3, "text"}, "    Block[3] type=\"text\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"empty is skipped", "", ""},
		{"plain", "hello", "  text: \"hello\"\n"},
		{"escaped", "a\n\"b\"", "  text: \"a\\n\\\"b\\\"\"\n"},
		{"clipped", strings.Repeat("ж", maxText+5), "  text: \"" + strings.Repeat("ж", maxText) + "\"...\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.TextBlock(1, "text", tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Ints(t *testing.T) {
	tw := NewTreeWriter()
	tw.Ints(0, "absent", nil)
	tw.Ints(0, "empty", []int{})
	tw.Ints(1, "blocks", []int{0, 1, 2})

	want := "empty: []\n  blocks: [0,1,2]\n"
	if got := tw.String(); got != want {
		t.Errorf("Ints() = %q, want %q", got, want)
	}
}
