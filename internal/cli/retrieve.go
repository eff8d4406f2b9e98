package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"clausecheck/internal/adapter/render"
)

var (
	retrieveTopK  int
	retrieveJSON  bool
	retrieveQuiet bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <file>",
	Short: "Show which clauses would be sent for review",
	Long: `Chunk and index a contract, then print the chunks most similar to the
review query with their scores. Nothing is sent to the review model.

Examples:
  clausecheck retrieve lease.txt
  clausecheck retrieve lease.txt --top-k 5 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	rootCmd.AddCommand(retrieveCmd)
	retrieveCmd.Flags().IntVarP(&retrieveTopK, "top-k", "k", 0, "number of results (default from config)")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output as JSON")
	retrieveCmd.Flags().BoolVarP(&retrieveQuiet, "quiet", "q", false, "hide the progress bar")
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	doc, err := loadDocument(cfg, args[0])
	if err != nil {
		return err
	}

	uc, idx, err := newReviewUseCase(cfg, doc, retrieveTopK, nil)
	if err != nil {
		return err
	}
	defer idx.Close()

	retrieval, err := uc.Retrieve(context.Background(), doc, newProgress(retrieveQuiet || retrieveJSON))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if retrieveJSON {
		data, err := json.MarshalIndent(retrieval.Retrieved, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(retrieval.Retrieved) == 0 {
		fmt.Fprintln(out, "No clauses found.")
		return nil
	}
	fmt.Fprintf(out, "Top %d of %d chunks for: %s\n\n", len(retrieval.Retrieved), len(retrieval.Chunks), cfg.Retrieve.Query)
	fmt.Fprint(out, render.Retrieved(retrieval.Retrieved, 0))
	return nil
}
