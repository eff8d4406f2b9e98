package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"clausecheck/config"
	"clausecheck/internal/adapter/analyzer"
	"clausecheck/internal/adapter/chunker"
	"clausecheck/internal/adapter/embedding"
	"clausecheck/internal/adapter/index"
	"clausecheck/internal/adapter/loader"
	"clausecheck/internal/adapter/retriever"
	"clausecheck/internal/adapter/store"
	"clausecheck/internal/domain"
	"clausecheck/internal/port"
	"clausecheck/internal/usecase"
)

// loadDocument reads path (or stdin for "-") through the configured include
// globs.
func loadDocument(cfg *config.Config, path string) (domain.Document, error) {
	var l port.DocumentLoader = loader.NewLoader(cfg.Input.Includes, cfg.Input.Excludes)
	doc, err := l.Load(path)
	if err != nil {
		return domain.Document{}, err
	}
	logger.Debug().Str("path", doc.Path).Str("doc", doc.ID).Int("runes", len([]rune(doc.Text))).Msg("document loaded")
	return doc, nil
}

func newChunker(cfg *config.Config) (*chunker.RecursiveChunker, error) {
	c, err := chunker.NewRecursiveChunker(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("invalid chunking config: %w", err)
	}
	return c, nil
}

func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "tfidf", "":
		tok := analyzer.NewTokenizer()
		if cfg.Embedding.Stem {
			tok.WithStemming()
		}
		return embedding.NewTFIDFEmbedder(tok), nil
	case "openai":
		key := os.Getenv(cfg.Embedding.APIKeyEnv)
		if key == "" {
			return nil, &config.ConfigurationError{Var: cfg.Embedding.APIKeyEnv, Err: config.ErrMissingAPIKey}
		}
		return embedding.NewLangchainEmbedder(embedding.LangchainConfig{
			BaseURL:   cfg.Embedding.BaseURL,
			APIKey:    key,
			Model:     cfg.Embedding.Model,
			BatchSize: cfg.Embedding.BatchSize,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

func newVectorStore(cfg *config.Config, docID string) (port.VectorStore, error) {
	switch cfg.Index.Backend {
	case "memory", "":
		return store.NewMemoryVectorStore(0), nil
	case "chromem":
		return store.NewChromemStore("clauses-" + docID)
	default:
		return nil, fmt.Errorf("unsupported index backend: %s", cfg.Index.Backend)
	}
}

// newIndex builds the per-document embedding index. The caller closes it.
func newIndex(cfg *config.Config, docID string) (*index.EmbeddingIndex, error) {
	emb, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	vs, err := newVectorStore(cfg, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}
	logger.Debug().Str("embedder", emb.ModelName()).Str("backend", cfg.Index.Backend).Msg("index created")
	return index.NewEmbeddingIndex(emb, vs, cfg.Embedding.BatchSize), nil
}

// newReviewUseCase wires the pipeline for doc. reviewer may be nil for
// retrieval-only commands.
func newReviewUseCase(cfg *config.Config, doc domain.Document, topK int, reviewer port.Reviewer) (*usecase.ReviewUseCase, *index.EmbeddingIndex, error) {
	chk, err := newChunker(cfg)
	if err != nil {
		return nil, nil, err
	}
	idx, err := newIndex(cfg, doc.ID)
	if err != nil {
		return nil, nil, err
	}
	if topK <= 0 {
		topK = cfg.Retrieve.TopK
	}
	ret := retriever.NewFixedQueryRetriever(idx, cfg.Retrieve.Query, topK)
	if cfg.Retrieve.Expand && isLexical(cfg) {
		ret.WithExpander(retriever.NewQueryExpander())
	}
	return usecase.NewReviewUseCase(chk, idx, ret, reviewer, logger), idx, nil
}

func isLexical(cfg *config.Config) bool {
	return cfg.Embedding.Provider == "tfidf" || cfg.Embedding.Provider == ""
}

// newProgress returns a progress callback that draws an embedding bar on
// stderr, or nil when quiet.
func newProgress(quiet bool) port.ProgressFunc {
	if quiet {
		return nil
	}
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Set(done)
	}
}

// openArchive opens the review archive, or returns nil when archiving is
// disabled and not forced.
func openArchive(cfg *config.Config, force bool) (*store.ReviewArchive, error) {
	if !cfg.Archive.Enabled && !force {
		return nil, nil
	}
	path, err := cfg.ArchivePath()
	if err != nil {
		return nil, err
	}
	a, err := store.NewReviewArchive(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open review archive %s: %w", path, err)
	}
	return a, nil
}
