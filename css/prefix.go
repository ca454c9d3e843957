package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// IsIdent reports whether s is a single valid CSS identifier, so it could be
// used as a class name prefix.
func IsIdent(s string) bool {
	if len(s) == 0 {
		return false
	}
	l := css.NewLexer(parse.NewInputString(s))
	tt, data := l.Next()
	if tt != css.IdentToken || string(data) != s {
		return false
	}
	tt, _ = l.Next()
	return tt == css.ErrorToken && errors.Is(l.Err(), io.EOF)
}

// RewritePrefix replaces prefix of every class selector starting with
// "from-" with "to-". Everything else is copied untouched.
func RewritePrefix(data []byte, from, to string) ([]byte, error) {
	if from == to {
		return data, nil
	}
	if !IsIdent(to) {
		return nil, fmt.Errorf("invalid class prefix %q", to)
	}

	var out bytes.Buffer
	out.Grow(len(data))

	l := css.NewLexer(parse.NewInputBytes(data))
	afterDot := false
	for {
		tt, text := l.Next()
		switch tt {
		case css.ErrorToken:
			if err := l.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("unable to rewrite class prefix: %w", err)
			}
			return out.Bytes(), nil
		case css.IdentToken:
			if s := string(text); afterDot && strings.HasPrefix(s, from+"-") {
				out.WriteString(to)
				out.WriteString(s[len(from):])
				afterDot = false
				continue
			}
		}
		afterDot = tt == css.DelimToken && len(text) == 1 && text[0] == '.'
		out.Write(text)
	}
}
