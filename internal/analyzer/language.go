package analyzer

// Token is one word of input text with its coarse part-of-speech tag
// (Penn Treebank style: NN, NNS, VB, ...).
type Token struct {
	Text string
	Tag  string
}

// Language provides tokenization, part-of-speech tagging and lemmatization
// for a single target language. The analyzer is configured once with one
// Language; behavior for text in other languages is degraded, not an error.
type Language interface {
	// TokenizeTag splits text into tokens with coarse POS tags.
	TokenizeTag(text string) ([]Token, error)

	// Lemma reduces a surface form to its dictionary form. Implementations
	// without a dictionary entry return the input unchanged.
	Lemma(word string) string
}

// noopLanguage is the degraded capability used when no language model could
// be loaded: it produces no tokens, so keyword extraction yields empty
// output and summarization still completes.
type noopLanguage struct{}

func (noopLanguage) TokenizeTag(string) ([]Token, error) { return nil, nil }
func (noopLanguage) Lemma(word string) string            { return word }

// Noop returns the degraded no-op language capability.
func Noop() Language {
	return noopLanguage{}
}
