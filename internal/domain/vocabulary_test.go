package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/farum-router/internal/domain"
)

func TestDefaultVocabularyOrder(t *testing.T) {
	want := []domain.Keyword{
		"exit", "general", "realtime", "open", "close", "play",
		"generate image", "system", "content", "google search",
		"youtube search", "reminder",
	}

	assert.Equal(t, want, domain.DefaultVocabulary().Keywords())
}

func TestVocabularyKeywordsIsACopy(t *testing.T) {
	v := domain.DefaultVocabulary()
	kws := v.Keywords()
	kws[0] = "mutated"

	assert.Equal(t, domain.KeywordExit, v.Keywords()[0])
}

func TestVocabularyMatch(t *testing.T) {
	v := domain.DefaultVocabulary()

	tests := []struct {
		name string
		text string
		want domain.Keyword
		ok   bool
	}{
		{"bare exit", "exit", domain.KeywordExit, true},
		{"paren argument", "open(chrome)", domain.KeywordOpen, true},
		{"space argument", "google search cats", domain.KeywordGoogleSearch, true},
		{"multi word keyword", "generate image of a lion", domain.KeywordGenerateImage, true},
		{"case sensitive", "Open chrome", "", false},
		{"prose", "sure", "", false},
		{"keyword not at start", "please open chrome", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := v.Match(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVocabularyMatchPrefersLongestKeyword(t *testing.T) {
	v := domain.NewVocabulary("play", "play list")

	got, ok := v.Match("play list of the week")
	require.True(t, ok)
	assert.Equal(t, domain.Keyword("play list"), got)

	got, ok = v.Match("play afsana")
	require.True(t, ok)
	assert.Equal(t, domain.Keyword("play"), got)
}

func TestNewVocabularyDropsDuplicatesAndEmpty(t *testing.T) {
	v := domain.NewVocabulary("open", "", "close", "open")

	assert.Equal(t, []domain.Keyword{"open", "close"}, v.Keywords())
	assert.Equal(t, 2, v.Len())
	assert.True(t, v.Contains("close"))
	assert.False(t, v.Contains("play"))
}
