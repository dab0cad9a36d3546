// Package analyzer extracts ranked keyword candidates (common nouns) from
// free chat text. It is pure CPU work over an injected Language capability
// and holds no state beyond the stopword set.
package analyzer

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

// MediaPlaceholder is the sentinel substituted at ingestion for messages
// with no textual content. The analyzer recognizes it and yields nothing.
const MediaPlaceholder = "[Media message]"

// minKeywordLen is the exclusive length bound: tokens of 2 runes or fewer
// are dropped.
const minKeywordLen = 2

var (
	// Lossy, best-effort normalization. Not validators.
	urlPattern     = regexp.MustCompile(`(?i)\bhttps?://\S+|\bwww\.\S+`)
	mentionPattern = regexp.MustCompile(`@\w+`)
)

// Analyzer implements keyword extraction for one target language.
type Analyzer struct {
	lang   Language
	logger *slog.Logger

	mu        sync.RWMutex
	stopwords map[string]struct{}
}

// New builds an Analyzer over lang. A nil stopwords slice uses the built-in
// set for the language; an explicit empty slice disables stopword filtering.
func New(lang Language, stopwords []string, logger *slog.Logger) *Analyzer {
	if lang == nil {
		lang = Noop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if stopwords == nil {
		stopwords = defaultStopwords
	}
	a := &Analyzer{lang: lang, logger: logger}
	a.SetStopwords(stopwords)
	return a
}

// SetStopwords replaces the stopword set. Safe to call while extraction is
// running on other goroutines (language-pack hot reload).
func (a *Analyzer) SetStopwords(words []string) {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	a.mu.Lock()
	a.stopwords = set
	a.mu.Unlock()
}

// ExtractKeywords returns the normalized common-noun tokens of text, in
// scan order, possibly with repeats. Deterministic for identical input.
// It never returns an error: tagging faults degrade to empty output.
func (a *Analyzer) ExtractKeywords(text string) []string {
	if strings.TrimSpace(text) == "" || text == MediaPlaceholder {
		return nil
	}

	cleaned := urlPattern.ReplaceAllString(text, " ")
	cleaned = mentionPattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.ToLower(strings.TrimSpace(cleaned))
	if cleaned == "" {
		return nil
	}

	tokens, err := a.lang.TokenizeTag(cleaned)
	if err != nil {
		a.logger.Debug("keyword tagging failed, contributing nothing", "error", err)
		return nil
	}

	a.mu.RLock()
	stop := a.stopwords
	a.mu.RUnlock()

	var out []string
	for _, tok := range tokens {
		if !isCommonNoun(tok.Tag) {
			continue
		}
		word := strings.ToLower(tok.Text)
		if utf8.RuneCountInString(word) <= minKeywordLen {
			continue
		}
		if _, skip := stop[word]; skip {
			continue
		}
		out = append(out, a.lang.Lemma(word))
	}
	return out
}

// isCommonNoun keeps NN and NNS only. Proper nouns (NNP, NNPS) are names,
// not topics, and are filtered out.
func isCommonNoun(tag string) bool {
	return tag == "NN" || tag == "NNS"
}
