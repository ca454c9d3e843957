package html

import (
	"strconv"
	"strings"

	"github.com/cebtenzzre/npf2html/npf"
)

// class builds class attribute value from prefixed names.
func class(r Renderer, names ...string) string {
	var buf strings.Builder
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(r.Prefix())
		buf.WriteByte('-')
		buf.WriteString(name)
	}
	return buf.String()
}

func span(r Renderer, name, text string) string {
	return `<span class="` + class(r, name) + `">` + r.Escape(text) + `</span>`
}

// RenderTextNoIndent converts non-nestable text block to HTML.
func RenderTextNoIndent(r Renderer, block *npf.TextBlock) string {
	content := FormatText(r, block.Text, block.Formatting)
	switch block.Subtype {
	case npf.TextHeading1:
		return `<h1 class="` + class(r, "block-text", "block-heading1") + `">` + content + `</h1>`
	case npf.TextHeading2:
		return `<h2 class="` + class(r, "block-text", "block-heading2") + `">` + content + `</h2>`
	case npf.TextQuote:
		return `<blockquote class="` + class(r, "block-text", "block-quote") + `">` + content + `</blockquote>`
	case npf.TextPlain:
		return `<p class="` + class(r, "block-text") + `">` + content + `</p>`
	}
	return `<p class="` + class(r, "block-text", "block-"+string(block.Subtype)) + `">` + content + `</p>`
}

// RenderTextIndented converts group of indented text blocks. Indented
// subtype becomes blockquote with paragraphs, list subtypes become lists with
// nested groups placed inside preceding item.
func RenderTextIndented(r Renderer, items []IndentedItem) string {
	if len(items) == 0 || items[0].Block == nil {
		return ""
	}
	subtype := items[0].Block.Subtype

	var buf strings.Builder
	switch subtype {
	case npf.TextOrderedListItem, npf.TextUnorderedListItem:
		tag := "ul"
		if subtype == npf.TextOrderedListItem {
			tag = "ol"
		}
		buf.WriteString(`<` + tag + ` class="` + class(r, "block-text", "block-"+string(subtype)) + `">`)
		itemOpen := false
		for _, item := range items {
			if item.Block == nil {
				if !itemOpen {
					buf.WriteString("<li>")
					itemOpen = true
				}
				buf.WriteString(item.Nested)
				continue
			}
			if itemOpen {
				buf.WriteString("</li>")
			}
			buf.WriteString("<li>")
			buf.WriteString(FormatText(r, item.Block.Text, item.Block.Formatting))
			itemOpen = true
		}
		if itemOpen {
			buf.WriteString("</li>")
		}
		buf.WriteString(`</` + tag + `>`)
	default:
		buf.WriteString(`<blockquote class="` + class(r, "block-text", "block-indented") + `">`)
		for _, item := range items {
			if item.Block == nil {
				buf.WriteString(item.Nested)
				continue
			}
			buf.WriteString("<p>")
			buf.WriteString(FormatText(r, item.Block.Text, item.Block.Formatting))
			buf.WriteString("</p>")
		}
		buf.WriteString("</blockquote>")
	}
	return buf.String()
}

// RenderImageMedia renders img element with all available sizes in srcset,
// src points to the largest one.
func RenderImageMedia(r Renderer, media []npf.VisualMedia, alt string) string {
	best := npf.Largest(media)
	if best == nil {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(`<img src="` + r.Escape(best.URL) + `"`)

	var srcset []string
	for i := range media {
		if media[i].Width > 0 {
			srcset = append(srcset, media[i].URL+" "+strconv.Itoa(media[i].Width)+"w")
		}
	}
	if len(srcset) > 1 {
		buf.WriteString(` srcset="` + r.Escape(strings.Join(srcset, ", ")) + `"`)
	}
	if alt != "" {
		buf.WriteString(` alt="` + r.Escape(alt) + `"`)
	}
	buf.WriteString(">")
	return buf.String()
}

// RenderImage converts image block to figure linking to the largest image.
func RenderImage(r Renderer, block *npf.ImageBlock) string {
	var buf strings.Builder
	buf.WriteString(`<figure class="` + class(r, "block-image") + `">`)
	if best := npf.Largest(block.Media); best != nil {
		buf.WriteString(`<a href="` + r.Escape(best.URL) + `">`)
		buf.WriteString(r.RenderImageMedia(block.Media, block.AltText))
		buf.WriteString("</a>")
	}
	if block.Caption != "" || block.Attribution.Valid() {
		buf.WriteString("<figcaption>")
		if block.Caption != "" {
			buf.WriteString(span(r, "block-image-caption", block.Caption))
		}
		if block.Attribution.Valid() {
			buf.WriteString(r.RenderAttribution(block.Attribution))
		}
		buf.WriteString("</figcaption>")
	}
	buf.WriteString("</figure>")
	return buf.String()
}

// RenderVideo converts video block. Player preference: native media, embed
// HTML, embed iframe, embed URL, plain link.
func RenderVideo(r Renderer, block *npf.VideoBlock) string {
	var buf strings.Builder
	buf.WriteString(`<figure class="` + class(r, "block-video") + `">`)
	switch {
	case block.Media != nil:
		src := block.Media.URL
		if src == "" {
			src = block.URL
		}
		buf.WriteString(`<video controls src="` + r.Escape(src) + `"`)
		if poster := npf.Largest(block.Poster); poster != nil {
			buf.WriteString(` poster="` + r.Escape(poster.URL) + `"`)
		}
		buf.WriteString("></video>")
	case block.EmbedHTML != "":
		buf.WriteString(block.EmbedHTML)
	case block.EmbedIframe != nil:
		buf.WriteString(`<iframe src="` + r.Escape(block.EmbedIframe.URL) + `"` +
			` width="` + strconv.Itoa(block.EmbedIframe.Width) + `"` +
			` height="` + strconv.Itoa(block.EmbedIframe.Height) + `"></iframe>`)
	case block.EmbedURL != "":
		buf.WriteString(`<iframe src="` + r.Escape(block.EmbedURL) + `"></iframe>`)
	default:
		buf.WriteString(`<a href="` + r.Escape(block.URL) + `">` + r.Escape(block.URL) + `</a>`)
	}
	if block.Attribution.Valid() {
		buf.WriteString("<figcaption>" + r.RenderAttribution(block.Attribution) + "</figcaption>")
	}
	buf.WriteString("</figure>")
	return buf.String()
}

// RenderAudio converts audio block. Player preference: native media, embed
// HTML, embed URL, plain link.
func RenderAudio(r Renderer, block *npf.AudioBlock) string {
	var buf strings.Builder
	buf.WriteString(`<figure class="` + class(r, "block-audio") + `">`)
	switch {
	case block.Media != nil:
		buf.WriteString(`<audio controls src="` + r.Escape(block.Media.URL) + `"></audio>`)
	case block.EmbedHTML != "":
		buf.WriteString(block.EmbedHTML)
	case block.EmbedURL != "":
		buf.WriteString(`<iframe src="` + r.Escape(block.EmbedURL) + `"></iframe>`)
	default:
		buf.WriteString(`<a href="` + r.Escape(block.URL) + `">` + r.Escape(block.URL) + `</a>`)
	}
	if len(block.Poster) > 0 {
		buf.WriteString(r.RenderImageMedia(block.Poster, ""))
	}
	if block.Title != "" || block.Artist != "" || block.Album != "" || block.Attribution.Valid() {
		buf.WriteString("<figcaption>")
		if block.Title != "" {
			buf.WriteString(span(r, "block-audio-title", block.Title))
		}
		if block.Artist != "" {
			buf.WriteString(span(r, "block-audio-artist", block.Artist))
		}
		if block.Album != "" {
			buf.WriteString(span(r, "block-audio-album", block.Album))
		}
		if block.Attribution.Valid() {
			buf.WriteString(r.RenderAttribution(block.Attribution))
		}
		buf.WriteString("</figcaption>")
	}
	buf.WriteString("</figure>")
	return buf.String()
}

// RenderLink converts link block to a card.
func RenderLink(r Renderer, block *npf.LinkBlock) string {
	var buf strings.Builder
	buf.WriteString(`<a class="` + class(r, "block-link") + `" href="` + r.Escape(block.URL) + `">`)
	if len(block.Poster) > 0 {
		buf.WriteString(r.RenderImageMedia(block.Poster, ""))
	}

	title := block.Title
	if title == "" {
		title = block.DisplayURL
	}
	if title == "" {
		title = block.URL
	}
	buf.WriteString(span(r, "block-link-title", title))
	if block.Description != "" {
		buf.WriteString(span(r, "block-link-description", block.Description))
	}
	if block.SiteName != "" {
		buf.WriteString(span(r, "block-link-site", block.SiteName))
	}
	if block.Author != "" {
		buf.WriteString(span(r, "block-link-author", block.Author))
	}
	buf.WriteString("</a>")
	return buf.String()
}

// RenderPoll converts poll block to a question heading and answers list.
func RenderPoll(r Renderer, block *npf.PollBlock) string {
	var buf strings.Builder
	buf.WriteString(`<div class="` + class(r, "block-poll") + `">`)
	buf.WriteString(`<h3 class="` + class(r, "block-poll-question") + `">` + r.Escape(block.Question) + `</h3>`)
	buf.WriteString(`<ul class="` + class(r, "block-poll-answers") + `">`)
	for _, answer := range block.Answers {
		buf.WriteString("<li>" + r.Escape(answer.AnswerText) + "</li>")
	}
	buf.WriteString("</ul></div>")
	return buf.String()
}

// RenderPaywall converts paywall block. Invisible and disabled paywalls
// produce nothing.
func RenderPaywall(r Renderer, block *npf.PaywallBlock) string {
	if !block.Visible() {
		return ""
	}
	switch block.Subtype {
	case npf.PaywallCTA:
		var buf strings.Builder
		buf.WriteString(`<a class="` + class(r, "block-paywall", "block-paywall-cta") + `" href="` + r.Escape(block.URL) + `">`)
		if block.Title != "" {
			buf.WriteString(span(r, "block-paywall-title", block.Title))
		}
		if block.Text != "" {
			buf.WriteString(span(r, "block-paywall-text", block.Text))
		}
		buf.WriteString("</a>")
		return buf.String()
	case npf.PaywallDivider:
		var buf strings.Builder
		buf.WriteString(`<div class="` + class(r, "block-paywall", "block-paywall-divider") + `"`)
		if block.Color != "" {
			buf.WriteString(` style="color: ` + r.Escape(block.Color) + `"`)
		}
		buf.WriteString(">" + r.Escape(block.Text) + "</div>")
		return buf.String()
	}
	return ""
}
