package analyzer

import (
	"errors"
	"strings"
	"testing"
)

// nounLanguage tags every token as a common noun and lemmatizes via a fixed
// table. Keeps extraction tests independent of the real English model.
type nounLanguage struct {
	lemmas map[string]string
}

func (l nounLanguage) TokenizeTag(text string) ([]Token, error) {
	var out []Token
	for _, w := range strings.Fields(text) {
		out = append(out, Token{Text: w, Tag: "NN"})
	}
	return out, nil
}

func (l nounLanguage) Lemma(word string) string {
	if lemma, ok := l.lemmas[word]; ok {
		return lemma
	}
	return word
}

type failingLanguage struct{}

func (failingLanguage) TokenizeTag(string) ([]Token, error) {
	return nil, errors.New("model not loaded")
}
func (failingLanguage) Lemma(word string) string { return word }

// taggedLanguage returns a fixed token stream regardless of input.
type taggedLanguage struct {
	tokens []Token
}

func (l taggedLanguage) TokenizeTag(string) ([]Token, error) { return l.tokens, nil }
func (l taggedLanguage) Lemma(word string) string            { return word }

func TestExtractKeywords_EmptyAndSentinel(t *testing.T) {
	a := New(nounLanguage{}, []string{}, nil)

	for _, text := range []string{"", "   ", MediaPlaceholder} {
		if got := a.ExtractKeywords(text); len(got) != 0 {
			t.Errorf("ExtractKeywords(%q) = %v, want none", text, got)
		}
	}
}

func TestExtractKeywords_StripsURLsAndMentions(t *testing.T) {
	a := New(nounLanguage{}, []string{}, nil)

	got := a.ExtractKeywords("https://example.com/x check www.example.org @bob deployment")
	want := []string{"check", "deployment"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractKeywords_OnlyURL(t *testing.T) {
	a := New(nounLanguage{}, []string{}, nil)
	if got := a.ExtractKeywords("https://example.com/only"); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestExtractKeywords_TagFilter(t *testing.T) {
	lang := taggedLanguage{tokens: []Token{
		{Text: "running", Tag: "VBG"},
		{Text: "server", Tag: "NN"},
		{Text: "london", Tag: "NNP"},
		{Text: "servers", Tag: "NNS"},
	}}
	a := New(lang, []string{}, nil)

	got := a.ExtractKeywords("whatever")
	want := []string{"server", "servers"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractKeywords_ShortTokensDropped(t *testing.T) {
	a := New(nounLanguage{}, []string{}, nil)

	got := a.ExtractKeywords("ab abc a xy xyz")
	want := []string{"abc", "xyz"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractKeywords_StopwordsFiltered(t *testing.T) {
	a := New(nounLanguage{}, []string{"thing", "stuff"}, nil)

	got := a.ExtractKeywords("thing deployment stuff")
	if len(got) != 1 || got[0] != "deployment" {
		t.Errorf("got %v, want [deployment]", got)
	}
}

func TestExtractKeywords_Lemmatizes(t *testing.T) {
	lang := nounLanguage{lemmas: map[string]string{"servers": "server"}}
	a := New(lang, []string{}, nil)

	got := a.ExtractKeywords("servers")
	if len(got) != 1 || got[0] != "server" {
		t.Errorf("got %v, want [server]", got)
	}
}

func TestExtractKeywords_Deterministic(t *testing.T) {
	a := New(nounLanguage{}, nil, nil)
	const text = "deployment pipeline deployment rollout"

	first := a.ExtractKeywords(text)
	for i := 0; i < 5; i++ {
		again := a.ExtractKeywords(text)
		if len(again) != len(first) {
			t.Fatalf("run %d: got %v, want %v", i, again, first)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: got %v, want %v", i, again, first)
			}
		}
	}
}

func TestExtractKeywords_TaggingFailureDegrades(t *testing.T) {
	a := New(failingLanguage{}, nil, nil)
	if got := a.ExtractKeywords("deployment talk"); len(got) != 0 {
		t.Errorf("got %v, want none on tagging failure", got)
	}
}

func TestExtractKeywords_NoopLanguage(t *testing.T) {
	a := New(Noop(), nil, nil)
	if got := a.ExtractKeywords("deployment talk"); len(got) != 0 {
		t.Errorf("got %v, want none with no-op language", got)
	}
}

func TestSetStopwords_ReplacesSet(t *testing.T) {
	a := New(nounLanguage{}, []string{"deployment"}, nil)

	if got := a.ExtractKeywords("deployment rollout"); len(got) != 1 || got[0] != "rollout" {
		t.Fatalf("before reload: got %v, want [rollout]", got)
	}

	a.SetStopwords([]string{"rollout"})
	if got := a.ExtractKeywords("deployment rollout"); len(got) != 1 || got[0] != "deployment" {
		t.Errorf("after reload: got %v, want [deployment]", got)
	}
}
