package tokenize

// stopWords is the fixed stop-word list spec §1 refers to
// ("stop-word list is fixed"). It is intentionally small and
// unconfigurable: query terms in this set never reach the directory
// lookup.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "but": true, "by": true, "for": true,
	"if": true, "in": true, "into": true, "is": true, "it": true,
	"no": true, "not": true, "of": true, "on": true, "or": true,
	"such": true, "that": true, "the": true, "their": true,
	"then": true, "there": true, "these": true, "they": true,
	"this": true, "to": true, "was": true, "will": true, "with": true,
}

// IsStopWord reports whether w is in the fixed stop-word list.
func IsStopWord(w string) bool {
	return stopWords[w]
}
