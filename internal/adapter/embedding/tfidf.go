package embedding

import (
	"context"
	"errors"
	"math"
	"sort"

	"clausecheck/internal/adapter/analyzer"
)

// TFIDFEmbedder is a deterministic lexical embedder. Fit builds a sorted
// vocabulary and smoothed IDF weights from the chunks of the current
// document; Embed produces L2-normalised TF-IDF vectors over that vocabulary.
type TFIDFEmbedder struct {
	tokenizer  *analyzer.Tokenizer
	vocabulary map[string]int
	idf        []float64
	fitted     bool
}

func NewTFIDFEmbedder(tokenizer *analyzer.Tokenizer) *TFIDFEmbedder {
	if tokenizer == nil {
		tokenizer = analyzer.NewTokenizer()
	}
	return &TFIDFEmbedder{
		tokenizer:  tokenizer,
		vocabulary: make(map[string]int),
	}
}

// Fit builds the vocabulary from corpus. An empty corpus yields an empty
// vocabulary; every vector is then zero-length.
func (e *TFIDFEmbedder) Fit(corpus []string) error {
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range e.tokenizer.Tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		e.vocabulary[term] = i
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	e.fitted = true
	return nil
}

func (e *TFIDFEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if !e.fitted {
		return nil, errors.New("tfidf embedder not fitted")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embedOne(text)
	}
	return vectors, nil
}

func (e *TFIDFEmbedder) embedOne(text string) []float32 {
	vec := make([]float64, len(e.idf))
	tf := make(map[int]int)
	total := 0
	for _, tok := range e.tokenizer.Tokenize(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}

	out := make([]float32, len(vec))
	if total == 0 {
		return out
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * e.idf[idx]
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

func (e *TFIDFEmbedder) Dimension() int {
	return len(e.idf)
}

func (e *TFIDFEmbedder) ModelName() string {
	return "tfidf"
}
