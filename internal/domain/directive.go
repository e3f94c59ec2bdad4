package domain

import "strings"

// UnresolvedSentinel marks a directive the model could not commit to.
const UnresolvedSentinel = "(query)"

// Directive is one normalized action, e.g. "open(chrome)", "open chrome"
// or a bare "exit". The argument is opaque payload for the executor.
type Directive string

func (d Directive) String() string {
	return string(d)
}

// Split separates the directive into its keyword and argument.
// ok is false when no keyword of vocab prefixes the directive.
func (d Directive) Split(vocab Vocabulary) (kw Keyword, arg string, ok bool) {
	kw, ok = vocab.Match(string(d))
	if !ok {
		return "", "", false
	}

	arg = strings.TrimSpace(strings.TrimPrefix(string(d), string(kw)))
	if strings.HasPrefix(arg, "(") && strings.HasSuffix(arg, ")") {
		arg = strings.TrimSpace(arg[1 : len(arg)-1])
	}
	return kw, arg, true
}

// Unresolved reports whether the directive carries the literal placeholder
// token. Spaced variants such as "sql ( query )" are ordinary arguments.
func (d Directive) Unresolved() bool {
	return strings.Contains(string(d), UnresolvedSentinel)
}

// AnyUnresolved reports whether any directive carries the sentinel.
func AnyUnresolved(directives []Directive) bool {
	for _, d := range directives {
		if d.Unresolved() {
			return true
		}
	}
	return false
}

// Strings converts directives to plain strings for transport.
func Strings(directives []Directive) []string {
	out := make([]string, 0, len(directives))
	for _, d := range directives {
		out = append(out, string(d))
	}
	return out
}
