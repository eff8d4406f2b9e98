// Command benchmark compares retrieval quality and speed of the vector store
// backends on one contract.
//
// Usage:
//
//	go run ./cmd/benchmark -f contract.txt
//	go run ./cmd/benchmark -f contract.txt -q "termination without notice" -k 5
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

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
)

func main() {
	file := flag.String("f", "", "Contract to benchmark")
	configDir := flag.String("config-dir", ".", "Directory to load clausecheck.yaml from")
	query := flag.String("q", "", "Query to test (default: the review query)")
	topK := flag.Int("k", 0, "Number of results (default from config)")
	flag.Parse()

	if *file == "" {
		fmt.Println("Usage: go run ./cmd/benchmark -f contract.txt [-q \"query\"] [-k 5]")
		fmt.Println("\nTests:")
		fmt.Println("  1. Chunking (count and size of chunks)")
		fmt.Println("  2. Index build time per backend")
		fmt.Println("  3. Similarity of the retrieved clauses")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *query == "" {
		*query = cfg.Retrieve.Query
	}
	if *topK <= 0 {
		*topK = cfg.Retrieve.TopK
	}

	doc, err := loader.NewLoader(cfg.Input.Includes, cfg.Input.Excludes).Load(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading contract: %v\n", err)
		os.Exit(1)
	}

	chk, err := chunker.NewRecursiveChunker(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating chunker: %v\n", err)
		os.Exit(1)
	}
	chunks, err := chk.Chunk(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error chunking: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Document: %s (%d runes)\n", doc.Path, len([]rune(doc.Text)))
	fmt.Printf("Chunks:   %d (size %d, overlap %d)\n", len(chunks), chk.Size(), chk.Overlap())
	fmt.Printf("Query:    %q\n", *query)
	fmt.Println()

	for _, backend := range []string{"memory", "chromem"} {
		if err := runBackend(backend, doc, chunks, *query, *topK, cfg.Retrieve.Expand); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", backend, err)
		}
	}
}

func runBackend(backend string, doc domain.Document, chunks []domain.Chunk, query string, k int, expand bool) error {
	var vs port.VectorStore
	switch backend {
	case "chromem":
		s, err := store.NewChromemStore("bench-" + doc.ID)
		if err != nil {
			return err
		}
		vs = s
	default:
		vs = store.NewMemoryVectorStore(0)
	}

	idx := index.NewEmbeddingIndex(embedding.NewTFIDFEmbedder(analyzer.NewTokenizer()), vs, 0)
	defer idx.Close()

	ctx := context.Background()
	start := time.Now()
	if err := idx.Build(ctx, chunks, nil); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	buildTime := time.Since(start)

	start = time.Now()
	ret := retriever.NewFixedQueryRetriever(idx, query, k)
	if expand {
		ret.WithExpander(retriever.NewQueryExpander())
	}
	results, err := ret.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}
	searchTime := time.Since(start)

	fmt.Printf("Backend: %s  (build %s, search %s)\n", backend, buildTime.Round(time.Microsecond), searchTime.Round(time.Microsecond))
	fmt.Println(strings.Repeat("-", 70))

	if len(results) == 0 {
		fmt.Println("No results.")
		fmt.Println()
		return nil
	}

	for i, r := range results {
		preview := []rune(strings.ReplaceAll(r.Chunk.Text, "\n", " "))
		if len(preview) > 150 {
			preview = append(preview[:150], []rune("...")...)
		}
		fmt.Printf("%d. [%s %.3f] chunk #%d runes %d-%d\n", i+1, rating(r.Score), r.Score, r.Chunk.Index, r.Chunk.Start, r.Chunk.End)
		fmt.Printf("   %s\n\n", string(preview))
	}

	avg := averageScore(results)
	fmt.Printf("QUALITY METRICS:\n")
	fmt.Printf("  Average similarity: %.3f\n", avg)
	fmt.Printf("  Top-1 similarity:   %.3f\n", results[0].Score)
	fmt.Printf("  Status: %s\n\n", status(avg))
	return nil
}

func rating(similarity float64) string {
	switch {
	case similarity > 0.7:
		return "HIGH"
	case similarity > 0.5:
		return "GOOD"
	case similarity > 0.3:
		return "OK"
	default:
		return "LOW"
	}
}

func averageScore(results []domain.ScoredChunk) float64 {
	if len(results) == 0 {
		return 0
	}
	var total float64
	for _, r := range results {
		total += r.Score
	}
	return total / float64(len(results))
}

func status(avg float64) string {
	switch {
	case avg > 0.5:
		return "GOOD - retrieved clauses match the query well"
	case avg > 0.3:
		return "OK - retrieved clauses are somewhat related"
	default:
		return "POOR - consider smaller chunks or remote embeddings"
	}
}
