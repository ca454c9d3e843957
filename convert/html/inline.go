package html

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/cebtenzzre/npf2html/npf"
)

// formatSpan is inline format clamped to the text and measured in code
// points.
type formatSpan struct {
	format *npf.InlineFormat
	key    string // identity for deduplication and stack diff
	rank   int    // outer to inner order for spans with identical ranges
	start  int
	end    int
}

func (s *formatSpan) isAnchor() bool {
	return s.format.Type.IsAnchor()
}

// formatRank returns stable nesting order of format types, -1 for types
// which could not be rendered.
func formatRank(t npf.FormatType) int {
	switch t {
	case npf.FormatLink:
		return 0
	case npf.FormatMention:
		return 1
	case npf.FormatColor:
		return 2
	case npf.FormatBold:
		return 3
	case npf.FormatItalic:
		return 4
	case npf.FormatStrikethrough:
		return 5
	case npf.FormatSmall:
		return 6
	}
	return -1
}

func mentionURL(f *npf.InlineFormat) string {
	if f.Blog == nil {
		return ""
	}
	return f.Blog.URL
}

func formatKey(f *npf.InlineFormat) string {
	switch f.Type {
	case npf.FormatColor:
		return "color:" + strings.ToLower(f.Hex)
	case npf.FormatLink:
		return "link:" + f.URL
	case npf.FormatMention:
		return "mention:" + mentionURL(f)
	}
	return string(f.Type)
}

// mergeAdjacentFormats joins identical formats where one starts exactly at
// the end of the other. Tumblr splits those when other formatting is present.
// Anchors are never merged.
func mergeAdjacentFormats(formatting []npf.InlineFormat) []npf.InlineFormat {
	last := make(map[npf.FormatType]int)
	merged := make([]npf.InlineFormat, 0, len(formatting))

	for _, f := range formatting {
		if f.Type.IsAnchor() {
			merged = append(merged, f)
			continue
		}
		if idx, ok := last[f.Type]; ok && canMerge(&merged[idx], &f) {
			merged[idx].End = f.End
			continue
		}
		last[f.Type] = len(merged)
		merged = append(merged, f)
	}
	return merged
}

func canMerge(a, b *npf.InlineFormat) bool {
	if a.End != b.Start || a.Type != b.Type {
		return false
	}
	switch a.Type {
	case npf.FormatBold, npf.FormatItalic, npf.FormatStrikethrough, npf.FormatSmall:
		return true
	case npf.FormatColor:
		return a.Hex == b.Hex
	}
	return false
}

// pickAnchor selects the single anchor allowed for a segment: most recently
// opened wins, then tighter range, then key.
func pickAnchor(active []*formatSpan) *formatSpan {
	var winner *formatSpan
	for _, s := range active {
		if !s.isAnchor() {
			continue
		}
		if winner == nil || compareAnchors(s, winner) < 0 {
			winner = s
		}
	}
	return winner
}

func compareAnchors(a, b *formatSpan) int {
	return cmp.Or(
		cmp.Compare(b.start, a.start),
		cmp.Compare(a.end-a.start, b.end-b.start),
		strings.Compare(a.key, b.key),
	)
}

// compareWanted orders segment stack from outermost to innermost: anchor
// first, earlier start, later end, rank, key.
func compareWanted(a, b *formatSpan) int {
	if a.isAnchor() != b.isAnchor() {
		if a.isAnchor() {
			return -1
		}
		return 1
	}
	return cmp.Or(
		cmp.Compare(a.start, b.start),
		cmp.Compare(b.end, a.end),
		cmp.Compare(a.rank, b.rank),
		strings.Compare(a.key, b.key),
	)
}

func openTag(r Renderer, s *formatSpan) string {
	switch s.format.Type {
	case npf.FormatBold:
		return "<strong>"
	case npf.FormatItalic:
		return "<em>"
	case npf.FormatStrikethrough:
		return "<s>"
	case npf.FormatSmall:
		return "<small>"
	case npf.FormatColor:
		return `<span style="color: ` + r.Escape(s.format.Hex) + `">`
	case npf.FormatLink:
		return `<a href="` + r.Escape(s.format.URL) + `">`
	case npf.FormatMention:
		return `<a class="` + r.Prefix() + `-inline-mention" href="` + r.Escape(mentionURL(s.format)) + `">`
	}
	return ""
}

func closeTag(s *formatSpan) string {
	switch s.format.Type {
	case npf.FormatBold:
		return "</strong>"
	case npf.FormatItalic:
		return "</em>"
	case npf.FormatStrikethrough:
		return "</s>"
	case npf.FormatSmall:
		return "</small>"
	case npf.FormatColor:
		return "</span>"
	case npf.FormatLink, npf.FormatMention:
		return "</a>"
	}
	return ""
}

// runeOffsets maps code point index to byte offset in text, last entry is
// len(text).
func runeOffsets(text string) []int {
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	return append(offsets, len(text))
}

// FormatText HTML-escapes text and applies formatting to it. Formatting
// ranges may overlap arbitrarily, output is always properly nested: spans are
// split into segments at every range boundary and tags are closed and
// reopened only where nesting requires it. At most one anchor (link or
// mention) covers any character.
func FormatText(r Renderer, text string, formatting []npf.InlineFormat) string {
	if !utf8.ValidString(text) {
		// every invalid byte becomes U+FFFD, code point offsets do not move
		text = strings.Map(func(sym rune) rune { return sym }, text)
	}
	if len(formatting) == 0 {
		return r.Escape(text)
	}

	formats := mergeAdjacentFormats(formatting)

	offsets := runeOffsets(text)
	cpLen := len(offsets) - 1

	spans := make([]*formatSpan, 0, len(formats))
	for i := range formats {
		f := &formats[i]
		rank := formatRank(f.Type)
		if rank < 0 {
			continue
		}
		if f.Type == npf.FormatMention && mentionURL(f) == "" {
			// nothing to link to
			continue
		}
		start := max(0, min(cpLen, f.Start))
		end := max(start, min(cpLen, f.End))
		if start >= end {
			continue
		}
		spans = append(spans, &formatSpan{format: f, key: formatKey(f), rank: rank, start: start, end: end})
	}
	if len(spans) == 0 {
		return r.Escape(text)
	}

	slices.SortFunc(spans, func(a, b *formatSpan) int {
		return cmp.Or(
			cmp.Compare(a.start, b.start),
			cmp.Compare(a.end, b.end),
			cmp.Compare(a.rank, b.rank),
			strings.Compare(a.key, b.key),
		)
	})

	breaks := make([]int, 0, 2*len(spans)+2)
	breaks = append(breaks, 0, cpLen)
	for _, s := range spans {
		breaks = append(breaks, s.start, s.end)
	}
	slices.Sort(breaks)
	breaks = slices.Compact(breaks)

	var (
		out    strings.Builder
		open   []*formatSpan // outer to inner
		active []*formatSpan
		wanted []*formatSpan
		seen   = make(map[string]struct{})
		lower  int // spans before this index ended already
	)
	out.Grow(len(text) + len(text)/2)

	for i := 0; i < len(breaks)-1; i++ {
		segStart, segEnd := breaks[i], breaks[i+1]

		for lower < len(spans) && spans[lower].end <= segStart {
			lower++
		}

		active = active[:0]
		clear(seen)
		for _, s := range spans[lower:] {
			if s.start > segStart {
				break
			}
			if s.end <= segStart {
				continue
			}
			if _, dup := seen[s.key]; dup {
				continue
			}
			seen[s.key] = struct{}{}
			active = append(active, s)
		}

		winner := pickAnchor(active)
		wanted = wanted[:0]
		for _, s := range active {
			if s.isAnchor() && (winner == nil || s.key != winner.key) {
				continue
			}
			wanted = append(wanted, s)
		}
		slices.SortFunc(wanted, compareWanted)

		lcp := 0
		for lcp < len(open) && lcp < len(wanted) && open[lcp].key == wanted[lcp].key {
			lcp++
		}
		for c := len(open) - 1; c >= lcp; c-- {
			out.WriteString(closeTag(open[c]))
		}
		open = open[:lcp]
		for _, s := range wanted[lcp:] {
			out.WriteString(openTag(r, s))
			open = append(open, s)
		}

		out.WriteString(r.Escape(text[offsets[segStart]:offsets[segEnd]]))
	}

	for c := len(open) - 1; c >= 0; c-- {
		out.WriteString(closeTag(open[c]))
	}
	return out.String()
}
