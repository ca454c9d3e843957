package content

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"github.com/cebtenzzre/npf2html/npf"
	"github.com/cebtenzzre/npf2html/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns a readable tree of all decoded posts. It exists solely for
// manual inspection during debugging.
func (c *Content) String() string {
	if c == nil {
		return "<nil Content>"
	}

	tw := treeWriter{debug.NewTreeWriter()}
	tw.Line(0, "Source %q format[%s] posts[%d]", c.SrcName, c.OutputFormat, len(c.Posts))
	for i := range c.Posts {
		p := &c.Posts[i]
		tw.Line(1, "Post[%d] id[%s] blog[%s]", i, p.ID, p.BlogDisplayName())
		tw.TextBlock(2, "summary", p.Summary)
		for j := range p.Trail {
			item := &p.Trail[j]
			tw.Line(2, "Trail[%d] post[%s] blog[%s]", j, item.Post.ID, item.Blog.Name)
			tw.blocks(3, item.Content, item.Layout)
		}
		tw.blocks(2, p.Content, p.Layout)
	}
	return tw.String()
}

func (tw treeWriter) blocks(depth int, blocks []npf.ContentBlock, layouts []npf.Layout) {
	counts := make(map[string]int)
	for i := range blocks {
		b := &blocks[i]
		typ := string(b.Type)
		if b.Type == npf.BlockText && b.Text != nil && b.Text.Subtype != npf.TextPlain {
			typ += "/" + string(b.Text.Subtype)
		}
		counts[typ]++
		tw.Line(depth, "Block[%d] type[%s]", i, typ)
		tw.TextBlock(depth+1, "text", b.AsPlainText())
	}
	for i := range layouts {
		l := &layouts[i]
		tw.Line(depth, "Layout[%d] type[%s]", i, l.Type)
		tw.Ints(depth+1, "blocks", l.Blocks)
		for j, row := range l.Display {
			tw.Ints(depth+1, fmt.Sprintf("row[%d]", j), row.Blocks)
		}
		if l.TruncateAfter != nil {
			tw.Line(depth+1, "truncate_after: %d", *l.TruncateAfter)
		}
	}

	if len(counts) > 0 {
		keys := slices.Collect(maps.Keys(counts))
		sort.Sort(natural.StringSlice(keys))
		tw.Line(depth, "Block types (%d)", len(keys))
		for _, k := range keys {
			tw.Line(depth+1, "%s: %d", k, counts[k])
		}
	}
}
