package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangchainEmbedder embeds text through an OpenAI-compatible embeddings
// endpoint using langchaingo.
type LangchainEmbedder struct {
	embedder  embeddings.Embedder
	model     string
	dimension int
}

// LangchainConfig configures a remote embedder.
type LangchainConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	BatchSize int
}

func NewLangchainEmbedder(cfg LangchainConfig) (*LangchainEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model is empty")
	}

	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.APIKey, "Bearer ")),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings client: %w", err)
	}

	var embOpts []embeddings.Option
	if cfg.BatchSize > 0 {
		embOpts = append(embOpts, embeddings.WithBatchSize(cfg.BatchSize))
	}
	emb, err := embeddings.NewEmbedder(llm, embOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &LangchainEmbedder{embedder: emb, model: cfg.Model}, nil
}

func (e *LangchainEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding returned %d vectors for %d texts", len(vectors), len(texts))
	}
	if e.dimension == 0 && len(vectors[0]) > 0 {
		e.dimension = len(vectors[0])
	}
	return vectors, nil
}

func (e *LangchainEmbedder) Dimension() int {
	return e.dimension
}

func (e *LangchainEmbedder) ModelName() string {
	return e.model
}
