// Package npf defines Tumblr Neue Post Format structures.
//
// See https://www.tumblr.com/docs/npf for the format description.
package npf

import (
	"strings"
)

// BlockType distinguishes different content block types.
type BlockType string

const (
	BlockAudio   BlockType = "audio"
	BlockImage   BlockType = "image"
	BlockLink    BlockType = "link"
	BlockPaywall BlockType = "paywall"
	BlockPoll    BlockType = "poll"
	BlockText    BlockType = "text"
	BlockVideo   BlockType = "video"
)

// ContentBlock stores a single discrete unit of content. Exactly one variant
// pointer is set, selected by Type. Blocks of types not documented by Tumblr
// are kept in Unknown.
type ContentBlock struct {
	Type    BlockType
	Audio   *AudioBlock
	Image   *ImageBlock
	Link    *LinkBlock
	Paywall *PaywallBlock
	Poll    *PollBlock
	Text    *TextBlock
	Video   *VideoBlock
	Unknown *UnknownBlock
}

// AsPlainText extracts plain text from the block based on its type.
func (b *ContentBlock) AsPlainText() string {
	switch b.Type {
	case BlockText:
		if b.Text != nil {
			return b.Text.Text
		}
	case BlockImage:
		if b.Image != nil {
			return b.Image.AltText
		}
	case BlockLink:
		if b.Link != nil {
			return b.Link.Title
		}
	case BlockPoll:
		if b.Poll != nil {
			return b.Poll.Question
		}
	case BlockAudio:
		if b.Audio != nil {
			return b.Audio.Title
		}
	}
	return ""
}

// IsIndented reports whether block is a text block which participates in
// indented (list or quote) grouping.
func (b *ContentBlock) IsIndented() bool {
	return b.Type == BlockText && b.Text != nil && b.Text.Subtype.Indented()
}

// TextSubtype is a text block subtype.
type TextSubtype string

const (
	TextPlain             TextSubtype = ""
	TextHeading1          TextSubtype = "heading1"
	TextHeading2          TextSubtype = "heading2"
	TextQuirky            TextSubtype = "quirky"
	TextQuote             TextSubtype = "quote"
	TextIndented          TextSubtype = "indented"
	TextChat              TextSubtype = "chat"
	TextOrderedListItem   TextSubtype = "ordered-list-item"
	TextUnorderedListItem TextSubtype = "unordered-list-item"
)

// Indented reports whether subtype is one of nestable subtypes.
func (s TextSubtype) Indented() bool {
	return s == TextIndented || s == TextOrderedListItem || s == TextUnorderedListItem
}

// TextBlock is an NPF text type content block.
type TextBlock struct {
	Text        string         `json:"text"`
	Subtype     TextSubtype    `json:"subtype,omitempty"`
	IndentLevel int            `json:"indent_level,omitempty"`
	Formatting  []InlineFormat `json:"formatting,omitempty"`
}

// Media is an NPF media object.
type Media struct {
	URL                       string `json:"url"`
	Type                      string `json:"type,omitempty"`
	Width                     int    `json:"width,omitempty"`
	Height                    int    `json:"height,omitempty"`
	OriginalDimensionsMissing bool   `json:"original_dimensions_missing,omitempty"`
	Cropped                   bool   `json:"cropped,omitempty"`
	HasOriginalDimensions     bool   `json:"has_original_dimensions,omitempty"`
}

// VisualMedia is a media object which may have a poster image of its own
// (GIFs, videos).
type VisualMedia struct {
	Media
	Poster *Media `json:"poster,omitempty"`
}

// Largest returns the widest media object from the list, last one wins on
// equal widths. Returns nil for empty list.
func Largest(media []VisualMedia) *VisualMedia {
	var best *VisualMedia
	for i := range media {
		if best == nil || media[i].Width >= best.Width {
			best = &media[i]
		}
	}
	return best
}

// BlogInfo references a Tumblr blog.
type BlogInfo struct {
	UUID string `json:"uuid,omitempty"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// ImageBlock is an NPF image type content block.
type ImageBlock struct {
	Media         []VisualMedia     `json:"media"`
	Colors        map[string]string `json:"colors,omitempty"`
	FeedbackToken string            `json:"feedback_token,omitempty"`
	Poster        *VisualMedia      `json:"poster,omitempty"`
	Attribution   *Attribution      `json:"attribution,omitempty"`
	AltText       string            `json:"alt_text,omitempty"`
	Caption       string            `json:"caption,omitempty"`
}

// IFrame is used for constructing video iframes.
type IFrame struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// VideoBlock is an NPF video type content block. Either URL, Media or both
// are set.
type VideoBlock struct {
	URL                   string         `json:"url,omitempty"`
	Media                 *VisualMedia   `json:"media,omitempty"`
	Provider              string         `json:"provider,omitempty"`
	EmbedHTML             string         `json:"embed_html,omitempty"`
	EmbedIframe           *IFrame        `json:"embed_iframe,omitempty"`
	EmbedURL              string         `json:"embed_url,omitempty"`
	Poster                []VisualMedia  `json:"poster,omitempty"`
	Metadata              map[string]any `json:"metadata,omitempty"`
	Attribution           *Attribution   `json:"attribution,omitempty"`
	CanAutoplayOnCellular bool           `json:"can_autoplay_on_cellular,omitempty"`
	Duration              int            `json:"duration,omitempty"`
}

// AudioBlock is an NPF audio type content block.
type AudioBlock struct {
	URL         string         `json:"url,omitempty"`
	Media       *Media         `json:"media,omitempty"`
	Provider    string         `json:"provider,omitempty"`
	Title       string         `json:"title,omitempty"`
	Artist      string         `json:"artist,omitempty"`
	Album       string         `json:"album,omitempty"`
	Poster      []VisualMedia  `json:"poster,omitempty"`
	EmbedHTML   string         `json:"embed_html,omitempty"`
	EmbedURL    string         `json:"embed_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Attribution *Attribution   `json:"attribution,omitempty"`
}

// LinkBlock is an NPF link type content block.
type LinkBlock struct {
	URL         string        `json:"url"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Author      string        `json:"author,omitempty"`
	SiteName    string        `json:"site_name,omitempty"`
	DisplayURL  string        `json:"display_url,omitempty"`
	Poster      []VisualMedia `json:"poster,omitempty"`
}

// PollAnswer is a single poll choice.
type PollAnswer struct {
	ClientID   string `json:"client_id,omitempty"`
	AnswerText string `json:"answer_text"`
}

// PollSettings describes how poll behaves.
type PollSettings struct {
	MultipleChoice bool   `json:"multiple_choice,omitempty"`
	CloseStatus    string `json:"close_status,omitempty"`
	ExpireAfter    int64  `json:"expire_after,omitempty"`
	Source         string `json:"source,omitempty"`
}

// PollBlock is an NPF poll type content block.
type PollBlock struct {
	ClientID  string       `json:"client_id,omitempty"`
	Question  string       `json:"question"`
	Answers   []PollAnswer `json:"answers"`
	Settings  PollSettings `json:"settings,omitempty"`
	CreatedAt string       `json:"created_at,omitempty"`
}

// PaywallSubtype is a paywall block subtype.
type PaywallSubtype string

const (
	PaywallCTA      PaywallSubtype = "cta"
	PaywallDivider  PaywallSubtype = "divider"
	PaywallDisabled PaywallSubtype = "disabled"
)

// PaywallBlock is an NPF paywall type content block.
type PaywallBlock struct {
	Subtype   PaywallSubtype `json:"subtype"`
	URL       string         `json:"url,omitempty"`
	Text      string         `json:"text,omitempty"`
	Title     string         `json:"title,omitempty"`
	Color     string         `json:"color,omitempty"`
	IsVisible *bool          `json:"is_visible,omitempty"`
}

// Visible reports whether paywall should be shown, absent flag means visible.
func (p *PaywallBlock) Visible() bool {
	return p.IsVisible == nil || *p.IsVisible
}

// UnknownBlock keeps block of a type not documented as part of the Tumblr
// API.
type UnknownBlock struct {
	Type string
	Raw  map[string]any
}

// AttributionType distinguishes different attribution types.
type AttributionType string

const (
	AttributionPost AttributionType = "post"
	AttributionLink AttributionType = "link"
	AttributionBlog AttributionType = "blog"
	AttributionApp  AttributionType = "app"
)

// PostRef is a reference to a Tumblr post.
type PostRef struct {
	ID string `json:"id"`
}

// Attribution indicates where a content or layout block came from.
type Attribution struct {
	Type        AttributionType `json:"type"`
	URL         string          `json:"url,omitempty"`
	Post        *PostRef        `json:"post,omitempty"`
	Blog        *BlogInfo       `json:"blog,omitempty"`
	AppName     string          `json:"app_name,omitempty"`
	DisplayText string          `json:"display_text,omitempty"`
	Logo        *VisualMedia    `json:"logo,omitempty"`
}

// Valid reports whether attribution is present. Tumblr sometimes sends an
// empty array in place of attribution object.
func (a *Attribution) Valid() bool {
	return a != nil && a.Type != ""
}

// Href returns the link target of the attribution.
func (a *Attribution) Href() string {
	if a.Type == AttributionBlog {
		if a.Blog != nil {
			return a.Blog.URL
		}
		return ""
	}
	return a.URL
}

// FormatType distinguishes different inline formatting types.
type FormatType string

const (
	FormatBold          FormatType = "bold"
	FormatItalic        FormatType = "italic"
	FormatStrikethrough FormatType = "strikethrough"
	FormatSmall         FormatType = "small"
	FormatLink          FormatType = "link"
	FormatMention       FormatType = "mention"
	FormatColor         FormatType = "color"
)

// IsAnchor reports whether formatting renders as hyperlink.
func (t FormatType) IsAnchor() bool {
	return t == FormatLink || t == FormatMention
}

// InlineFormat is a single piece of inline formatting for a text block. Start
// is inclusive and End is exclusive, both are measured in code points of the
// block text.
type InlineFormat struct {
	Type  FormatType `json:"type"`
	Start int        `json:"start"`
	End   int        `json:"end"`
	URL   string     `json:"url,omitempty"`  // link
	Blog  *BlogInfo  `json:"blog,omitempty"` // mention
	Hex   string     `json:"hex,omitempty"`  // color
}

// LayoutType distinguishes different layout types.
type LayoutType string

const (
	LayoutAsk       LayoutType = "ask"
	LayoutCondensed LayoutType = "condensed"
	LayoutRows      LayoutType = "rows"
)

// RowsDisplay describes a single row of a rows layout.
type RowsDisplay struct {
	Blocks []int `json:"blocks"`
	Mode   *struct {
		Type string `json:"type"`
	} `json:"mode,omitempty"`
}

// Layout indicates how to lay out content blocks. Blocks is nil when absent,
// which is different from present but empty for condensed layouts.
type Layout struct {
	Type          LayoutType    `json:"type"`
	Blocks        []int         `json:"blocks,omitempty"`
	Display       []RowsDisplay `json:"display,omitempty"`
	TruncateAfter *int          `json:"truncate_after,omitempty"`
	Attribution   *Attribution  `json:"attribution,omitempty"`
}

// TrailItem is a single entry of the reblog trail.
type TrailItem struct {
	Blog    BlogInfo       `json:"blog"`
	Post    PostRef        `json:"post"`
	Content []ContentBlock `json:"content"`
	Layout  []Layout       `json:"layout,omitempty"`
}

// Post is a Tumblr post in NPF form.
type Post struct {
	ID        string         `json:"id_string,omitempty"`
	BlogName  string         `json:"blog_name,omitempty"`
	Blog      BlogInfo       `json:"blog,omitempty"`
	PostURL   string         `json:"post_url,omitempty"`
	Slug      string         `json:"slug,omitempty"`
	Summary   string         `json:"summary,omitempty"`
	Timestamp int64          `json:"timestamp,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	Content   []ContentBlock `json:"content"`
	Layout    []Layout       `json:"layout,omitempty"`
	Trail     []TrailItem    `json:"trail,omitempty"`
}

// AsPlainText extracts plain text from the post content, one line per block
// with text. Trail is not included.
func (p *Post) AsPlainText() string {
	var buf strings.Builder
	for i := range p.Content {
		text := strings.TrimSpace(p.Content[i].AsPlainText())
		if text == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(text)
	}
	return buf.String()
}

// AsTitleText returns text suitable for document title. Priority: 1) summary,
// 2) first line of text content, 3) fallback.
func (p *Post) AsTitleText(fallback string) string {
	if s := strings.TrimSpace(p.Summary); s != "" {
		if line, _, _ := strings.Cut(s, "\n"); line != "" {
			return line
		}
	}
	for i := range p.Content {
		if text := strings.TrimSpace(p.Content[i].AsPlainText()); text != "" {
			line, _, _ := strings.Cut(text, "\n")
			return line
		}
	}
	return fallback
}

// BlogDisplayName returns the name of the blog which made the post.
func (p *Post) BlogDisplayName() string {
	if p.Blog.Name != "" {
		return p.Blog.Name
	}
	return p.BlogName
}
