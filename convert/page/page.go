// Package page wraps rendered post fragments into standalone HTML documents.
package page

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/cebtenzzre/npf2html/content/text"
	"github.com/cebtenzzre/npf2html/misc"
)

// Meta describes document around the post fragment.
type Meta struct {
	Title       string
	Language    string // BCP 47 tag
	Description string
	// Canonical is the original post URL, optional
	Canonical string
	// Prefix of CSS class names, article element gets "<prefix>-post"
	Prefix     string
	Stylesheet []byte
}

// Build returns complete HTML document with fragment as the article body.
// Fragment and stylesheet are inserted as is, everything else is escaped.
func Build(fragment string, meta Meta) (string, error) {
	tag, err := language.Parse(meta.Language)
	if err != nil {
		return "", fmt.Errorf("invalid document language %q: %w", meta.Language, err)
	}

	// Raw content cannot go through the tree without being escaped, so it
	// is replaced with unique markers which are substituted after
	// serialization.
	marker := misc.GetAppName() + "-" + uuid.NewString()
	bodyMarker, styleMarker := marker+"-body", marker+"-style"

	doc := etree.NewDocument()
	doc.CreateDirective("DOCTYPE html")

	html := doc.CreateElement("html")
	html.CreateAttr("lang", tag.String())

	head := html.CreateElement("head")
	head.CreateElement("meta").CreateAttr("charset", "utf-8")

	viewport := head.CreateElement("meta")
	viewport.CreateAttr("name", "viewport")
	viewport.CreateAttr("content", "width=device-width, initial-scale=1")

	generator := head.CreateElement("meta")
	generator.CreateAttr("name", "generator")
	generator.CreateAttr("content", misc.GetAppName()+" "+misc.GetVersion())

	head.CreateElement("title").SetText(meta.Title)

	if meta.Description != "" {
		description := head.CreateElement("meta")
		description.CreateAttr("name", "description")
		description.CreateAttr("content", meta.Description)
	}
	if meta.Canonical != "" {
		link := head.CreateElement("link")
		link.CreateAttr("rel", "canonical")
		link.CreateAttr("href", meta.Canonical)
	}
	if len(meta.Stylesheet) > 0 {
		head.CreateElement("style").SetText(styleMarker)
	}

	body := html.CreateElement("body")
	article := body.CreateElement("article")
	prefix := meta.Prefix
	if prefix == "" {
		prefix = misc.GetAppName()
	}
	article.CreateAttr("class", prefix+"-post")
	article.SetText(bodyMarker)

	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("unable to serialize document: %w", err)
	}

	if strings.Count(out, bodyMarker) != 1 {
		return "", errors.New("unable to place post into document")
	}
	out = strings.Replace(out, bodyMarker, fragment, 1)
	if len(meta.Stylesheet) > 0 {
		out = strings.Replace(out, styleMarker, "\n"+string(meta.Stylesheet)+"\n", 1)
	}
	return out, nil
}

// Excerpt returns the first sentence of the text clipped to limit runes on a
// word boundary. Zero limit means no excerpt.
func Excerpt(s *text.Splitter, in string, limit int) string {
	in = strings.Join(strings.Fields(in), " ")
	if limit <= 0 || in == "" {
		return ""
	}

	var first string
	for sentence := range s.Sentences(in) {
		first = strings.TrimSpace(sentence)
		break
	}
	if utf8.RuneCountInString(first) <= limit {
		return first
	}

	runes := []rune(first)
	cut := string(runes[:limit])
	if runes[limit] != ' ' {
		// do not break words
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ,;:") + "…"
}
