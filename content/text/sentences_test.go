package text

import (
	"slices"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/text/language"
)

func TestNewSplitter(t *testing.T) {
	log := zaptest.NewLogger(t)

	if s := NewSplitter(language.MustParse("en-US"), log); s == nil {
		t.Error("NewSplitter(en-US) returned nil")
	}
	if s := NewSplitter(language.Russian, log); s != nil {
		t.Error("NewSplitter(ru) must return nil, there is no model")
	}
	if s := NewSplitter(language.Und, log); s != nil {
		t.Error("NewSplitter(und) must return nil")
	}
	if s := NewSplitter(language.Make("xx-garbage"), log); s != nil {
		t.Error("NewSplitter(xx-garbage) must return nil")
	}
	for _, tag := range []string{"en", "en-GB", "en-Latn-US"} {
		if s := NewSplitter(language.MustParse(tag), log); s == nil {
			t.Errorf("NewSplitter(%s) returned nil", tag)
		}
	}
}

func TestSentences(t *testing.T) {
	s := NewSplitter(language.English, zaptest.NewLogger(t))

	got := slices.Collect(s.Sentences("The cat sat on the mat. Then it left. Nobody noticed."))
	want := []string{"The cat sat on the mat. ", "Then it left. ", "Nobody noticed."}
	if !slices.Equal(got, want) {
		t.Errorf("Sentences() = %q, want %q", got, want)
	}

	if got := slices.Collect(s.Sentences("")); len(got) > 1 || (len(got) == 1 && got[0] != "") {
		t.Errorf("Sentences(\"\") = %q", got)
	}
}

func TestSentences_EarlyStop(t *testing.T) {
	s := NewSplitter(language.English, zaptest.NewLogger(t))

	var first string
	for sentence := range s.Sentences("First one here. Second one there.") {
		first = sentence
		break
	}
	if first != "First one here. " {
		t.Errorf("first sentence = %q", first)
	}
}

func TestSentences_NilSplitter(t *testing.T) {
	var s *Splitter
	got := slices.Collect(s.Sentences("One. Two."))
	if !slices.Equal(got, []string{"One. Two."}) {
		t.Errorf("Sentences() on nil splitter = %q", got)
	}
}
