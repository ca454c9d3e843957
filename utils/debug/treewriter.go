// Package debug produces human readable dumps of parsed data for debug
// reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxText limits length (in runes) of text values in the dump, posts could
// be long and we only need to recognize them.
const maxText = 80

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes labeled quoted text, empty values are skipped.
func (tw TreeWriter) TextBlock(depth int, label, value string) {
	if value == "" {
		return
	}
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Ints writes labeled list of indexes, nil list is skipped.
func (tw TreeWriter) Ints(depth int, label string, values []int) {
	if values == nil {
		return
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	tw.Line(depth, "%s: [%s]", label, strings.Join(parts, ","))
}

func encodeText(raw string) string {
	if utf8.RuneCountInString(raw) > maxText {
		runes := []rune(raw)
		return strconv.Quote(string(runes[:maxText])) + "..."
	}
	return strconv.Quote(raw)
}
