package analyzer

// defaultStopwords is the built-in English stopword set. It is intentionally
// small: the POS filter already removes most function words, this catches
// noun-tagged filler that carries no topical signal.
var defaultStopwords = []string{
	"thing", "things", "stuff", "lot", "lots", "bit", "bits",
	"way", "ways", "kind", "kinds", "sort", "sorts", "type", "types",
	"one", "ones", "someone", "something", "anything", "everything",
	"nothing", "anyone", "everyone", "nobody", "somebody",
	"today", "tomorrow", "yesterday", "time", "times",
	"guy", "guys", "man", "men", "people", "folks",
	"yeah", "yes", "okay", "thanks", "thank", "please",
	"lol", "haha", "omg", "btw", "imo", "imho",
}
