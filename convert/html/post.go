package html

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cebtenzzre/npf2html/npf"
)

// RenderPost renders reblog trail of the post followed by post own content.
// Each trail item is converted with its own layout, opts.Layout is ignored
// in favor of post.Layout.
func RenderPost(post *npf.Post, opts *Options) (string, error) {
	if opts == nil {
		opts = &Options{}
	}
	r := opts.renderer()
	log := opts.logger()

	var buf strings.Builder
	for i := range post.Trail {
		item := &post.Trail[i]
		inner, err := Convert(item.Content, &Options{Layout: item.Layout, Renderer: r, Log: log})
		if err != nil {
			return "", fmt.Errorf("trail item %d (%s): %w", i, item.Post.ID, err)
		}
		buf.WriteString(`<div class="` + class(r, "trail-item") + `">`)
		buf.WriteString(renderTrailHeader(r, &item.Blog))
		buf.WriteString(inner)
		buf.WriteString("</div>")
	}

	own, err := Convert(post.Content, &Options{Layout: post.Layout, Renderer: r, Log: log})
	if err != nil {
		return "", fmt.Errorf("post content: %w", err)
	}
	log.Debug("Post rendered", zap.String("id", post.ID), zap.Int("trail", len(post.Trail)), zap.Int("blocks", len(post.Content)))
	buf.WriteString(own)
	return buf.String(), nil
}

func renderTrailHeader(r Renderer, blog *npf.BlogInfo) string {
	name := blog.Name
	if name == "" {
		name = "Anonymous"
	}
	header := `<div class="` + class(r, "trail-header") + `">`
	if blog.URL != "" {
		header += `<a href="` + r.Escape(blog.URL) + `">` + r.Escape(name) + `</a>`
	} else {
		header += r.Escape(name)
	}
	return header + "</div>"
}
