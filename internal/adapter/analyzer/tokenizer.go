package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer turns contract text into lowercase terms for lexical embedding.
// Modal verbs (may, shall, must, ...) are kept: in contracts they carry the
// obligation and are exactly what an unfair clause hinges on.
type Tokenizer struct {
	stopwords map[string]struct{}
	minLen    int
	stem      bool
}

// NewTokenizer creates a Tokenizer with the default English stopword list.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{
		stopwords: defaultStopwords(),
		minLen:    2,
	}
}

// WithStemming makes Tokenize reduce each term to its Porter stem.
func (t *Tokenizer) WithStemming() *Tokenizer {
	t.stem = true
	return t
}

// Tokenize splits text into terms, dropping stopwords and one-letter words.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		word = strings.ToLower(word)
		if len([]rune(word)) < t.minLen {
			continue
		}
		if _, isStop := t.stopwords[word]; isStop {
			continue
		}
		if t.stem {
			word = Stem(word)
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// splitWords splits text on anything that is not a letter or digit. An
// apostrophe inside a word is kept ("employee's").
func splitWords(text string) []string {
	var words []string
	var current strings.Builder
	runes := []rune(text)

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(r)
		case (r == '\'' || r == '’') && current.Len() > 0 && i+1 < len(runes) && unicode.IsLetter(runes[i+1]):
			current.WriteRune('\'')
		default:
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

func defaultStopwords() map[string]struct{} {
	stops := []string{
		"an", "and", "are", "as", "at", "be", "by", "for",
		"from", "has", "he", "in", "is", "it", "its", "of", "on",
		"that", "the", "to", "was", "were", "with", "this",
		"have", "had", "but", "you", "your", "we", "our",
		"they", "their", "she", "her", "his", "if", "or", "so",
		"do", "does", "did", "been", "being", "which",
		"who", "whom", "what", "when", "where", "why", "how",
		"each", "both", "few", "more", "most", "other",
		"some", "such", "than", "too", "very", "just", "also",
		"these", "those", "into", "about", "then", "there", "here",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
