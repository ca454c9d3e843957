// Package text has natural language helpers used to describe posts.
package text

import (
	"iter"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

type Splitter struct {
	*sentences.DefaultSentenceTokenizer
}

// NewSplitter returns sentence splitter for the language or nil when no
// trained model is available. Nil splitter is valid and treats whole input
// as a single sentence.
func NewSplitter(lang language.Tag, log *zap.Logger) *Splitter {
	// undetermined tag guesses English base with low confidence
	base, confidence := lang.Base()
	if lang == language.Und || confidence < language.High {
		log.Warn("Unable to determine language base, turning off sentence splitting", zap.Stringer("tag", lang), zap.Stringer("base", base))
		return nil
	}

	if en, _ := language.English.Base(); base != en {
		log.Debug("No sentence tokenizer model for language, turning off sentence splitting", zap.Stringer("language", lang))
		return nil
	}

	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("Unable to load sentences tokenizer data", zap.Stringer("tag", lang), zap.Error(err))
		return nil
	}
	return &Splitter{tokenizer}
}

// Sentences returns an iterator over sentences.
func (s *Splitter) Sentences(in string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if s == nil {
			yield(in)
			return
		}

		sentences := s.Tokenize(in)
		if len(sentences) == 0 {
			return
		}

		for i := 0; i < len(sentences)-1; i++ {
			text := sentences[i].Text

			// Sentences tokenizer has a funny way of working - sentence
			// trailing spaces belong to the next sentence. Move leading
			// spaces from next sentence to current one.
			nextText := sentences[i+1].Text
			for idx, sym := range nextText {
				if !unicode.IsSpace(sym) {
					text = text + nextText[0:idx]
					sentences[i+1].Text = nextText[idx:]
					break
				}
			}
			if !yield(text) {
				return
			}
		}
		yield(sentences[len(sentences)-1].Text)
	}
}
