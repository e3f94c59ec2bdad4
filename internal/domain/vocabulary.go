package domain

import (
	"sort"
	"strings"
)

// Keyword is a recognized action keyword.
type Keyword string

const (
	KeywordExit          Keyword = "exit"
	KeywordGeneral       Keyword = "general"
	KeywordRealtime      Keyword = "realtime"
	KeywordOpen          Keyword = "open"
	KeywordClose         Keyword = "close"
	KeywordPlay          Keyword = "play"
	KeywordGenerateImage Keyword = "generate image"
	KeywordSystem        Keyword = "system"
	KeywordContent       Keyword = "content"
	KeywordGoogleSearch  Keyword = "google search"
	KeywordYoutubeSearch Keyword = "youtube search"
	KeywordReminder      Keyword = "reminder"
)

// defaultKeywords keeps the declaration order downstream executors expect.
var defaultKeywords = []Keyword{
	KeywordExit, KeywordGeneral, KeywordRealtime, KeywordOpen, KeywordClose, KeywordPlay,
	KeywordGenerateImage, KeywordSystem, KeywordContent, KeywordGoogleSearch,
	KeywordYoutubeSearch, KeywordReminder,
}

// Vocabulary is an immutable, ordered set of keywords.
//
// Matching is prefix based. When several keywords are a prefix of the same
// text the longest one wins; equal lengths fall back to declaration order.
type Vocabulary struct {
	keywords []Keyword
	byLength []Keyword
}

// NewVocabulary builds a vocabulary from keywords, dropping empty and
// duplicate entries.
func NewVocabulary(keywords ...Keyword) Vocabulary {
	seen := make(map[Keyword]struct{}, len(keywords))
	ordered := make([]Keyword, 0, len(keywords))
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		ordered = append(ordered, k)
	}

	byLength := make([]Keyword, len(ordered))
	copy(byLength, ordered)
	sort.SliceStable(byLength, func(i, j int) bool {
		return len(byLength[i]) > len(byLength[j])
	})

	return Vocabulary{keywords: ordered, byLength: byLength}
}

// DefaultVocabulary returns the directive vocabulary shared with the executors.
func DefaultVocabulary() Vocabulary {
	return NewVocabulary(defaultKeywords...)
}

// Keywords returns a copy of the keywords in declaration order.
func (v Vocabulary) Keywords() []Keyword {
	out := make([]Keyword, len(v.keywords))
	copy(out, v.keywords)
	return out
}

func (v Vocabulary) Len() int {
	return len(v.keywords)
}

// Contains reports whether k is a member of the vocabulary.
func (v Vocabulary) Contains(k Keyword) bool {
	for _, kw := range v.keywords {
		if kw == k {
			return true
		}
	}
	return false
}

// Match returns the keyword that prefixes text.
func (v Vocabulary) Match(text string) (Keyword, bool) {
	for _, kw := range v.byLength {
		if strings.HasPrefix(text, string(kw)) {
			return kw, true
		}
	}
	return "", false
}
