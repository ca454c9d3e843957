package html

import (
	"strings"

	"github.com/cebtenzzre/npf2html/npf"
)

// RenderAttribution converts attribution to a link pointing to its source.
func RenderAttribution(r Renderer, attr *npf.Attribution) string {
	if !attr.Valid() {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(`<a class="` + class(r, "attribution", "attribution-"+string(attr.Type)) + `"`)
	buf.WriteString(` href="` + r.Escape(attr.Href()) + `">`)

	switch attr.Type {
	case npf.AttributionPost, npf.AttributionBlog:
		if attr.Blog != nil {
			buf.WriteString(r.Escape(attr.Blog.Name))
		}
	case npf.AttributionLink:
		buf.WriteString(r.Escape(attr.URL))
	case npf.AttributionApp:
		display := attr.DisplayText
		if display == "" {
			display = attr.AppName
		}
		if display != "" {
			buf.WriteString(r.Escape(display))
		}
		if attr.Logo != nil {
			buf.WriteString(r.RenderImageMedia([]npf.VisualMedia{*attr.Logo}, ""))
		} else if display == "" {
			buf.WriteString(r.Escape(attr.URL))
		}
	}
	buf.WriteString("</a>")
	return buf.String()
}

// RenderAskLayout wraps question blocks with a header naming the asker.
// Questions without blog attribution are anonymous.
func RenderAskLayout(r Renderer, layout *npf.Layout, avatar []npf.VisualMedia, inner string) string {
	var buf strings.Builder
	buf.WriteString(`<div class="` + class(r, "layout-ask") + `">`)
	buf.WriteString(`<div class="` + class(r, "layout-ask-header") + `">`)
	if len(avatar) > 0 {
		buf.WriteString(`<span class="` + class(r, "layout-ask-avatar") + `">`)
		buf.WriteString(r.RenderImageMedia(avatar, ""))
		buf.WriteString("</span>")
	}

	var asker *npf.BlogInfo
	if layout != nil && layout.Attribution.Valid() && layout.Attribution.Blog != nil {
		asker = layout.Attribution.Blog
	}
	if asker != nil {
		buf.WriteString(`<a class="` + class(r, "layout-ask-asker") + `" href="` + r.Escape(asker.URL) + `">`)
		buf.WriteString(r.Escape(asker.Name))
		buf.WriteString("</a> asked:")
	} else {
		buf.WriteString(span(r, "layout-ask-asker", "Anonymous") + " asked:")
	}
	buf.WriteString("</div>")
	buf.WriteString(`<div class="` + class(r, "layout-ask-content") + `">` + inner + `</div>`)
	buf.WriteString("</div>")
	return buf.String()
}

// RenderRowLayout wraps blocks displayed side by side.
func RenderRowLayout(r Renderer, _ *npf.RowsDisplay, inner string) string {
	return `<div class="` + class(r, "layout-row") + `">` + inner + `</div>`
}

// RenderTruncateLayout hides content behind "Keep reading" disclosure.
func RenderTruncateLayout(r Renderer, inner string) string {
	return `<details class="` + class(r, "layout-truncate") + `"><summary>Keep reading</summary>` + inner + `</details>`
}
