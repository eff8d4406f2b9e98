package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"clausecheck/internal/adapter/render"
	"clausecheck/internal/domain"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived reviews",
	Long: `List reviews stored in the review archive, newest first. Reviews are only
archived when archive.enabled is set in the config.

Examples:
  clausecheck history
  clausecheck history show 12`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one archived review",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of reviews to list (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	archive, err := openArchive(GetConfig(), true)
	if err != nil {
		return err
	}
	defer archive.Close()

	recs, err := archive.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list reviews: %w", err)
	}

	out := cmd.OutOrStdout()
	if historyJSON {
		if recs == nil {
			recs = []domain.ReviewRecord{}
		}
		data, err := json.MarshalIndent(recs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(recs) == 0 {
		fmt.Fprintln(out, "No archived reviews.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tMODEL\tDOCUMENT")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Status, r.Model, r.DocPath)
	}
	return tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	archive, err := openArchive(GetConfig(), true)
	if err != nil {
		return err
	}
	defer archive.Close()

	rec, err := archive.Get(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if historyJSON {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "%s\n%s · %s · %s · chunks %v of %d\n\n",
		render.ReviewTitle, rec.DocPath, rec.Model, rec.CreatedAt.Local().Format("2006-01-02 15:04"), rec.Retrieved, rec.Chunks)
	if rec.Status == string(domain.StatusSucceeded) {
		fmt.Fprintln(out, rec.Text)
	} else {
		fmt.Fprintln(out, rec.Message)
	}
	return nil
}
