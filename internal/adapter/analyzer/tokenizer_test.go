package analyzer

import (
	"reflect"
	"testing"
)

func TestTokenizer_Tokenize(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("The employer MAY terminate the employee without notice.")
	want := []string{"employer", "may", "terminate", "employee", "without", "notice"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("Tokenize = %v, want %v", tokens, want)
	}
}

func TestTokenizer_KeepsModalVerbs(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("shall must may should not")
	if len(tokens) != 5 {
		t.Errorf("expected modal verbs and negation to survive, got %v", tokens)
	}
}

func TestTokenizer_StopwordRemoval(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("the quick brown fox")
	for _, token := range tokens {
		if token == "the" {
			t.Errorf("stopword 'the' should be removed, got %v", tokens)
		}
	}
}

func TestTokenizer_ShortWordRemoval(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("a I go to")
	for _, token := range tokens {
		if len(token) < 2 {
			t.Errorf("short word should be removed: %s", token)
		}
	}
}

func TestTokenizer_EmptyInput(t *testing.T) {
	tok := NewTokenizer()

	if tokens := tok.Tokenize(""); len(tokens) != 0 {
		t.Errorf("expected 0 tokens for empty input, got %d", len(tokens))
	}
	if tokens := tok.Tokenize("  ...  ;; "); len(tokens) != 0 {
		t.Errorf("expected 0 tokens for punctuation, got %v", tokens)
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"hello world", []string{"hello", "world"}},
		{"non-compete", []string{"non", "compete"}},
		{"employee's rights", []string{"employee's", "rights"}},
		{"employee’s", []string{"employee's"}},
		{"'quoted'", []string{"quoted"}},
		{"Section 4.2(b)", []string{"Section", "4", "2", "b"}},
		{"Kündigung", []string{"Kündigung"}},
	}

	for _, tt := range tests {
		words := splitWords(tt.input)
		if !reflect.DeepEqual(words, tt.expected) {
			t.Errorf("splitWords(%q) = %v, want %v", tt.input, words, tt.expected)
		}
	}
}
