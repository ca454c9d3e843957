package html

import (
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/cebtenzzre/npf2html/npf"
)

// DefaultPrefix is used for CSS class names when nothing else is requested.
const DefaultPrefix = "npf"

// IndentedItem is a single entry of an indented group: either a text block of
// the group level or already rendered nested group.
type IndentedItem struct {
	Block  *npf.TextBlock
	Nested string
}

// Renderer converts individual NPF blocks and layouts into HTML. Converter
// only requires this capability and never keeps any state in it, so
// implementations must be safe for reuse.
//
// HTMLRenderer is the default implementation. Custom implementations may
// embed it and override some methods, package level Render* functions accept
// Renderer so overridden methods are used by nested calls.
type Renderer interface {
	// Escape HTML-escapes text so it could be used as element content or
	// quoted attribute value.
	Escape(text string) string
	// Prefix returns prefix for CSS class names.
	Prefix() string

	RenderAudio(block *npf.AudioBlock) string
	RenderImage(block *npf.ImageBlock) string
	RenderLink(block *npf.LinkBlock) string
	RenderPaywall(block *npf.PaywallBlock) string
	RenderPoll(block *npf.PollBlock) string
	RenderVideo(block *npf.VideoBlock) string
	RenderTextNoIndent(block *npf.TextBlock) string
	// RenderTextIndented renders group of indented text blocks, first item
	// always holds a block.
	RenderTextIndented(items []IndentedItem) string
	RenderUnknown(block *npf.UnknownBlock) string

	RenderAttribution(attr *npf.Attribution) string
	// RenderImageMedia renders img element for a set of alternative image
	// sizes.
	RenderImageMedia(media []npf.VisualMedia, alt string) string

	RenderAskLayout(layout *npf.Layout, inner string) string
	RenderRowLayout(display *npf.RowsDisplay, inner string) string
	RenderTruncateLayout(inner string) string
}

// HTMLRenderer is default Renderer implementation.
type HTMLRenderer struct {
	prefix       string
	askingAvatar []npf.VisualMedia
}

var _ Renderer = (*HTMLRenderer)(nil)

// NewRenderer returns default renderer. Empty prefix means DefaultPrefix.
// askingAvatar, when not empty, is shown in ask layouts.
func NewRenderer(prefix string, askingAvatar []npf.VisualMedia) *HTMLRenderer {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &HTMLRenderer{prefix: prefix, askingAvatar: askingAvatar}
}

// Escape escapes HTML special characters, invalid UTF-8 is replaced too.
func (h *HTMLRenderer) Escape(text string) string {
	return xhtml.EscapeString(strings.ToValidUTF8(text, "\uFFFD"))
}

func (h *HTMLRenderer) Prefix() string {
	return h.prefix
}

func (h *HTMLRenderer) RenderAudio(block *npf.AudioBlock) string {
	return RenderAudio(h, block)
}

func (h *HTMLRenderer) RenderImage(block *npf.ImageBlock) string {
	return RenderImage(h, block)
}

func (h *HTMLRenderer) RenderLink(block *npf.LinkBlock) string {
	return RenderLink(h, block)
}

func (h *HTMLRenderer) RenderPaywall(block *npf.PaywallBlock) string {
	return RenderPaywall(h, block)
}

func (h *HTMLRenderer) RenderPoll(block *npf.PollBlock) string {
	return RenderPoll(h, block)
}

func (h *HTMLRenderer) RenderVideo(block *npf.VideoBlock) string {
	return RenderVideo(h, block)
}

func (h *HTMLRenderer) RenderTextNoIndent(block *npf.TextBlock) string {
	return RenderTextNoIndent(h, block)
}

func (h *HTMLRenderer) RenderTextIndented(items []IndentedItem) string {
	return RenderTextIndented(h, items)
}

// RenderUnknown drops blocks of unknown types.
func (h *HTMLRenderer) RenderUnknown(_ *npf.UnknownBlock) string {
	return ""
}

func (h *HTMLRenderer) RenderAttribution(attr *npf.Attribution) string {
	return RenderAttribution(h, attr)
}

func (h *HTMLRenderer) RenderImageMedia(media []npf.VisualMedia, alt string) string {
	return RenderImageMedia(h, media, alt)
}

func (h *HTMLRenderer) RenderAskLayout(layout *npf.Layout, inner string) string {
	return RenderAskLayout(h, layout, h.askingAvatar, inner)
}

func (h *HTMLRenderer) RenderRowLayout(display *npf.RowsDisplay, inner string) string {
	return RenderRowLayout(h, display, inner)
}

func (h *HTMLRenderer) RenderTruncateLayout(inner string) string {
	return RenderTruncateLayout(h, inner)
}
