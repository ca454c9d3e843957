package css

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Stylesheet holds what we need to know about a stylesheet before it is
// attached to produced pages.
type Stylesheet struct {
	Classes  []string // distinct class names used in selectors, in order of appearance
	Imports  []string
	Rules    int
	Warnings []string
}

// HasPrefix reports whether any selector in the stylesheet targets a class
// with the given prefix.
func (s *Stylesheet) HasPrefix(prefix string) bool {
	return slices.ContainsFunc(s.Classes, func(c string) bool {
		return strings.HasPrefix(c, prefix+"-")
	})
}

// Parser parses CSS stylesheets.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. Parsing never fails, problems are
// collected as warnings. The optional source parameter identifies what's
// being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, tt, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			err := parser.Err()
			if err == nil || errors.Is(err, io.EOF) {
				return sheet
			}
			sheet.Warnings = append(sheet.Warnings, err.Error())
			p.log.Debug("CSS parse error", zap.Error(err))

		case css.AtRuleGrammar:
			if string(data) == "@import" {
				if url := extractImportURL(parser.Values()); url != "" {
					sheet.Imports = append(sheet.Imports, url)
					p.log.Debug("Parsed @import", zap.String("url", url))
				}
			} else {
				p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))
			}

		case css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			// grouped selectors arrive as qualified rules followed by a single ruleset
			if gt == css.BeginRulesetGrammar {
				sheet.Rules++
			}
			tokens := parser.Values()
			if len(data) > 0 {
				tokens = append([]css.Token{{TokenType: tt, Data: data}}, tokens...)
			}
			for _, class := range selectorClasses(tokens) {
				if !slices.Contains(sheet.Classes, class) {
					sheet.Classes = append(sheet.Classes, class)
				}
			}
		}
	}
}

// selectorClasses returns class names referenced by selector tokens.
func selectorClasses(tokens []css.Token) []string {
	var classes []string
	for i := 1; i < len(tokens); i++ {
		prev, cur := tokens[i-1], tokens[i]
		if prev.TokenType == css.DelimToken && string(prev.Data) == "." && cur.TokenType == css.IdentToken {
			classes = append(classes, string(cur.Data))
		}
	}
	return classes
}

// extractImportURL extracts the URL from @import tokens.
// Handles: @import "url"; @import url("url"); @import url(url);
func extractImportURL(tokens []css.Token) string {
	for _, t := range tokens {
		switch t.TokenType {
		case css.StringToken:
			return unquote(string(t.Data))
		case css.URLToken:
			s := string(t.Data)
			s = strings.TrimPrefix(s, "url(")
			s = strings.TrimSuffix(s, ")")
			return unquote(strings.TrimSpace(s))
		}
	}
	return ""
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
