// Package html converts NPF content blocks into HTML.
package html

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cebtenzzre/npf2html/npf"
)

var (
	// ErrCondensedMissing is returned when condensed layout has neither
	// blocks nor truncate_after.
	ErrCondensedMissing = errors.New("condensed layout requires either blocks or truncate_after to be present")
	// ErrCondensedBlocks is returned when condensed layout blocks are not
	// [0, 1, ..., n-1].
	ErrCondensedBlocks = errors.New("condensed layout has invalid blocks")
)

// Options controls conversion.
type Options struct {
	// Layout is the post layout, may be empty.
	Layout []npf.Layout
	// Renderer converts individual blocks, NewRenderer(Prefix, AskingAvatar)
	// is used when not set.
	Renderer Renderer
	// Prefix for CSS class names used by default renderer.
	Prefix string
	// AskingAvatar is shown in ask layouts by default renderer.
	AskingAvatar []npf.VisualMedia
	// Log receives debug messages, nothing is logged when not set.
	Log *zap.Logger
}

func (o *Options) renderer() Renderer {
	if o.Renderer != nil {
		return o.Renderer
	}
	return NewRenderer(o.Prefix, o.AskingAvatar)
}

func (o *Options) logger() *zap.Logger {
	if o.Log != nil {
		return o.Log
	}
	return zap.NewNop()
}

// layoutGroup is a contiguous range of blocks [start, end) wrapped by either
// ask or row layout.
type layoutGroup struct {
	ask   *npf.Layout
	row   *npf.RowsDisplay
	start int
	end   int
}

func (g *layoutGroup) wrap(r Renderer, inner string) string {
	if g.ask != nil {
		return r.RenderAskLayout(g.ask, inner)
	}
	return r.RenderRowLayout(g.row, inner)
}

// buildLayoutGroups returns ask layouts and multi-block rows ordered by
// their first block. Groups are expected to be contiguous and not to overlap.
func buildLayoutGroups(layouts []npf.Layout) []layoutGroup {
	var groups []layoutGroup
	for i := range layouts {
		layout := &layouts[i]
		switch layout.Type {
		case npf.LayoutAsk:
			if len(layout.Blocks) == 0 {
				continue
			}
			groups = append(groups, layoutGroup{
				ask:   layout,
				start: slices.Min(layout.Blocks),
				end:   slices.Max(layout.Blocks) + 1,
			})
		case npf.LayoutRows:
			for j := range layout.Display {
				display := &layout.Display[j]
				if len(display.Blocks) <= 1 {
					continue
				}
				groups = append(groups, layoutGroup{
					row:   display,
					start: slices.Min(display.Blocks),
					end:   slices.Max(display.Blocks) + 1,
				})
			}
		}
	}
	slices.SortStableFunc(groups, func(a, b layoutGroup) int {
		return cmp.Compare(a.start, b.start)
	})
	return groups
}

// resolveTruncation returns index of the last block shown before "read more"
// cut. Only the first rows layout with truncate_after or the first condensed
// layout is used.
func resolveTruncation(layouts []npf.Layout) (int, bool, error) {
	for i := range layouts {
		layout := &layouts[i]
		switch layout.Type {
		case npf.LayoutRows:
			if layout.TruncateAfter != nil {
				return *layout.TruncateAfter, true, nil
			}
		case npf.LayoutCondensed:
			if layout.Blocks == nil && layout.TruncateAfter == nil {
				return 0, false, ErrCondensedMissing
			}
			if layout.Blocks != nil && !isSequence(layout.Blocks) {
				return 0, false, fmt.Errorf("%w: [%s]", ErrCondensedBlocks, joinInts(layout.Blocks))
			}
			if layout.TruncateAfter != nil {
				return *layout.TruncateAfter, true, nil
			}
			return layout.Blocks[len(layout.Blocks)-1], true, nil
		}
	}
	return 0, false, nil
}

func isSequence(blocks []int) bool {
	if len(blocks) == 0 {
		return false
	}
	for i, b := range blocks {
		if b != i {
			return false
		}
	}
	return true
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// sequencer walks blocks once, cursor is shared with indented collector.
type sequencer struct {
	blocks []npf.ContentBlock
	r      Renderer
	log    *zap.Logger
	i      int
}

// collectIndented consumes indented text blocks starting at the cursor and
// renders them. Deeper blocks are collected recursively into nested groups.
func (s *sequencer) collectIndented() string {
	first := s.blocks[s.i].Text
	level := first.IndentLevel
	items := []IndentedItem{{Block: first}}

	for s.i < len(s.blocks)-1 {
		next := &s.blocks[s.i+1]
		if !next.IsIndented() {
			break
		}
		nextLevel := next.Text.IndentLevel
		if nextLevel < level {
			break
		}
		if nextLevel == level {
			if next.Text.Subtype != first.Subtype {
				break
			}
			s.i++
			items = append(items, IndentedItem{Block: next.Text})
			continue
		}
		s.i++
		items = append(items, IndentedItem{Nested: s.collectIndented()})
	}
	return s.r.RenderTextIndented(items)
}

// render converts block at the cursor, the cursor may advance past absorbed
// indented blocks.
func (s *sequencer) render() string {
	block := &s.blocks[s.i]
	switch {
	case block.Type == npf.BlockAudio && block.Audio != nil:
		return s.r.RenderAudio(block.Audio)
	case block.Type == npf.BlockImage && block.Image != nil:
		return s.r.RenderImage(block.Image)
	case block.Type == npf.BlockLink && block.Link != nil:
		return s.r.RenderLink(block.Link)
	case block.Type == npf.BlockPaywall && block.Paywall != nil:
		return s.r.RenderPaywall(block.Paywall)
	case block.Type == npf.BlockPoll && block.Poll != nil:
		return s.r.RenderPoll(block.Poll)
	case block.Type == npf.BlockVideo && block.Video != nil:
		return s.r.RenderVideo(block.Video)
	case block.Type == npf.BlockText && block.Text != nil:
		if block.IsIndented() {
			return s.collectIndented()
		}
		return s.r.RenderTextNoIndent(block.Text)
	}

	unknown := block.Unknown
	if unknown == nil {
		unknown = &npf.UnknownBlock{Type: string(block.Type)}
	}
	s.log.Debug("Unknown content block", zap.Int("index", s.i), zap.String("type", unknown.Type))
	return s.r.RenderUnknown(unknown)
}

// Convert renders blocks into HTML string. Blocks covered by ask and rows
// layouts are wrapped accordingly and content following truncation point is
// wrapped by truncate layout. Invalid condensed layout aborts conversion.
func Convert(blocks []npf.ContentBlock, opts *Options) (string, error) {
	if opts == nil {
		opts = &Options{}
	}
	log := opts.logger()

	truncateAfter, truncate, err := resolveTruncation(opts.Layout)
	if err != nil {
		return "", err
	}
	groups := buildLayoutGroups(opts.Layout)

	s := &sequencer{blocks: blocks, r: opts.renderer(), log: log}

	var (
		out, group    strings.Builder
		grouping      bool
		truncateIndex = -1
	)
	if truncate && truncateAfter < 0 && len(blocks) > 0 {
		truncateIndex = 0
	}

	for s.i = 0; s.i < len(blocks); s.i++ {
		first := s.i
		rendered := s.render()

		if len(groups) > 0 && s.i >= groups[0].start {
			group.WriteString(rendered)
			grouping = true
			if s.i+1 >= groups[0].end {
				out.WriteString(groups[0].wrap(s.r, group.String()))
				group.Reset()
				grouping = false
				groups = groups[1:]
			}
		} else {
			out.WriteString(rendered)
		}

		if truncate && truncateIndex < 0 && first <= truncateAfter && truncateAfter <= s.i {
			truncateIndex = out.Len()
		}
	}

	if grouping {
		log.Debug("Layout group extends past the last block", zap.Int("start", groups[0].start), zap.Int("end", groups[0].end))
		out.WriteString(groups[0].wrap(s.r, group.String()))
	}

	result := out.String()
	if truncateIndex >= 0 {
		log.Debug("Truncating content", zap.Int("after", truncateAfter), zap.Int("offset", truncateIndex))
		result = result[:truncateIndex] + s.r.RenderTruncateLayout(result[truncateIndex:])
	}
	return result, nil
}
