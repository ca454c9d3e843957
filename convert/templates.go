package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"

	"github.com/cebtenzzre/npf2html/config"
	"github.com/cebtenzzre/npf2html/content"
	"github.com/cebtenzzre/npf2html/npf"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Title      string
	Blog       string
	ID         string
	Slug       string
	Tags       []string
	Date       string
	Timestamp  time.Time
	Format     string
	SourceFile string
	// Index of the post in the source, sources could have many posts
	Index int
}

func buildDate(ts int64) (string, time.Time) {
	if ts <= 0 {
		return "", time.Time{}
	}
	t := time.Unix(ts, 0).UTC()
	return t.Format("2006-01-02"), t
}

func buildValues(c *content.Content, post *npf.Post, index int, name config.TemplateFieldName) Values {
	date, stamp := buildDate(post.Timestamp)
	return Values{
		Context:    string(name),
		Title:      post.AsTitleText(""),
		Blog:       post.BlogDisplayName(),
		ID:         post.ID,
		Slug:       post.Slug,
		Tags:       post.Tags,
		Date:       date,
		Timestamp:  stamp,
		Format:     c.OutputFormat.String(),
		SourceFile: strings.TrimSuffix(filepath.Base(c.SrcName), filepath.Ext(c.SrcName)),
		Index:      index,
	}
}

func expandTemplate(c *content.Content, post *npf.Post, index int, name config.TemplateFieldName, field string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, buildValues(c, post, index, name)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
