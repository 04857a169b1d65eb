package tokenize

import "strings"

// Lemmatize applies a small fixed set of suffix-stripping rules so
// that query terms like "jumping" and "jumps" collapse onto the same
// indexed term "jump". Stripping is by suffix only: a doubled final
// consonant is kept, so "running" becomes "runn", not "run". This mirrors original_source's lemmatizer.rs: a
// tiny deterministic rule table, not a loaded model or dictionary.
func Lemmatize(w string) string {
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ing") && len(w) > 5:
		return strings.TrimSuffix(w, "ing")
	case strings.HasSuffix(w, "ed") && len(w) > 4:
		return strings.TrimSuffix(w, "ed")
	case strings.HasSuffix(w, "es") && len(w) > 4:
		return strings.TrimSuffix(w, "es")
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 3:
		return strings.TrimSuffix(w, "s")
	default:
		return w
	}
}
