package classification

import (
	"strings"

	"github.com/PabloGalante/farum-router/internal/domain"
)

var newlineStripper = strings.NewReplacer("\r", "", "\n", "")

// Normalize turns raw model text into directives.
//
// The text is treated as one logical line (line breaks are dropped, not
// used as separators), split on commas, trimmed, and every segment that
// does not start with a vocabulary keyword is discarded. Order is kept.
func Normalize(raw string, vocab domain.Vocabulary) []domain.Directive {
	line := newlineStripper.Replace(raw)

	out := make([]domain.Directive, 0)
	for _, seg := range strings.Split(line, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if _, ok := vocab.Match(seg); !ok {
			continue
		}
		out = append(out, domain.Directive(seg))
	}
	return out
}
