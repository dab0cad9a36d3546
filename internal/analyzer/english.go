package analyzer

import (
	"fmt"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	prose "github.com/jdkato/prose/v2"
)

// english is the default Language: prose for tokenization and POS tagging,
// golem's English dictionary for lemmatization.
type english struct {
	lemmatizer *golem.Lemmatizer
}

// NewEnglish loads the English language capability. Loading the lemma
// dictionary can fail; callers fall back to Noop() and log.
func NewEnglish() (Language, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemma dictionary: %w", err)
	}
	return &english{lemmatizer: lem}, nil
}

func (e *english) TokenizeTag(text string) ([]Token, error) {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	toks := doc.Tokens()
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		out = append(out, Token{Text: t.Text, Tag: t.Tag})
	}
	return out, nil
}

func (e *english) Lemma(word string) string {
	if e.lemmatizer.InDict(word) {
		return e.lemmatizer.Lemma(word)
	}
	return word
}
