package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"clausecheck/internal/adapter/render"
)

var chunkJSON bool

var chunkCmd = &cobra.Command{
	Use:   "chunk <file>",
	Short: "Show how a contract is split into chunks",
	Long: `Split a contract with the configured chunk size and overlap and print the
chunks in document order. No network access is needed.

Examples:
  clausecheck chunk lease.txt
  clausecheck chunk lease.txt --json`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)
	chunkCmd.Flags().BoolVar(&chunkJSON, "json", false, "output as JSON")
}

func runChunk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	doc, err := loadDocument(cfg, args[0])
	if err != nil {
		return err
	}
	chk, err := newChunker(cfg)
	if err != nil {
		return err
	}
	chunks, err := chk.Chunk(doc)
	if err != nil {
		return fmt.Errorf("failed to chunk document: %w", err)
	}

	out := cmd.OutOrStdout()
	if chunkJSON {
		data, err := json.MarshalIndent(chunks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(chunks) == 0 {
		fmt.Fprintln(out, "Document is empty.")
		return nil
	}
	fmt.Fprintf(out, "%d chunks (size %d, overlap %d)\n\n", len(chunks), chk.Size(), chk.Overlap())
	fmt.Fprint(out, render.Chunks(chunks, 0))
	return nil
}
