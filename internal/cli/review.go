package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"clausecheck/config"
	"clausecheck/internal/adapter/llm"
	"clausecheck/internal/adapter/render"
	"clausecheck/internal/tui"
)

var (
	reviewFormat     string
	reviewPager      bool
	reviewStrict     bool
	reviewShowPrompt bool
	reviewTopK       int
	reviewModel      string
	reviewTimeout    time.Duration
	reviewEcho       bool
	reviewQuiet      bool
	reviewWidth      int
)

var reviewCmd = &cobra.Command{
	Use:   "review <file>",
	Short: "Review a contract for illegal or unfair clauses",
	Long: `Review a contract: chunk it, retrieve the clauses most relevant to an
unfairness review and send them to the configured chat-completion model.

A failed remote call prints a single error message and exits 0; use --strict
to exit 2 instead. Use "-" to read the contract from stdin.

Examples:
  clausecheck review lease.txt
  clausecheck review lease.docx --format html > review.html
  clausecheck review - --strict < contract.md`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().StringVarP(&reviewFormat, "format", "f", "", "output format: text, markdown, html, json (default from config)")
	reviewCmd.Flags().BoolVar(&reviewPager, "pager", false, "show the review in a scrollable pager")
	reviewCmd.Flags().BoolVar(&reviewStrict, "strict", false, "exit with status 2 if the review request fails")
	reviewCmd.Flags().BoolVar(&reviewShowPrompt, "show-prompt", false, "print the assembled prompt to stderr")
	reviewCmd.Flags().IntVarP(&reviewTopK, "top-k", "k", 0, "number of clause chunks to send (default from config)")
	reviewCmd.Flags().StringVarP(&reviewModel, "model", "m", "", "review model (default from config)")
	reviewCmd.Flags().DurationVar(&reviewTimeout, "timeout", 0, "request timeout, e.g. 45s or 500ms (default from config)")
	reviewCmd.Flags().BoolVar(&reviewEcho, "echo", false, "show the uploaded contract before the review")
	reviewCmd.Flags().BoolVarP(&reviewQuiet, "quiet", "q", false, "hide the progress bar")
	reviewCmd.Flags().IntVar(&reviewWidth, "width", 0, "wrap text output at this width (0 disables)")
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	// Credentials are checked before any document is touched.
	creds, err := config.ResolveCredentials(cfg.LLM)
	if err != nil {
		return err
	}

	formatName := cfg.Output.Format
	if reviewFormat != "" {
		formatName = reviewFormat
	}
	format, err := render.ParseFormat(formatName)
	if err != nil {
		return err
	}

	model := cfg.LLM.Model
	if reviewModel != "" {
		model = reviewModel
	}
	timeout := time.Duration(cfg.LLM.TimeoutSecs) * time.Second
	if reviewTimeout > 0 {
		timeout = reviewTimeout
	}

	doc, err := loadDocument(cfg, args[0])
	if err != nil {
		return err
	}

	client, err := llm.NewClient(llm.Config{
		APIKey:  creds.APIKey,
		BaseURL: creds.BaseURL,
		Model:   model,
		Timeout: timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create review client: %w", err)
	}

	uc, idx, err := newReviewUseCase(cfg, doc, reviewTopK, client)
	if err != nil {
		return err
	}
	defer idx.Close()

	archive, err := openArchive(cfg, false)
	if err != nil {
		logger.Warn().Err(err).Msg("review archive unavailable")
	} else if archive != nil {
		defer archive.Close()
		uc.WithArchive(archive)
	}

	report, err := uc.Review(context.Background(), doc, newProgress(reviewQuiet))
	if err != nil {
		return err
	}

	if reviewShowPrompt {
		fmt.Fprintln(cmd.ErrOrStderr(), report.Prompt)
	}

	view := render.View{
		DocPath:   doc.Path,
		Model:     report.Model,
		Document:  doc.Text,
		Echo:      reviewEcho,
		Retrieved: report.Retrieved,
		Result:    report.Result,
	}

	if reviewPager && format == render.FormatText {
		if err := tui.Run(render.ReviewTitle, render.Terminal(view, 0)); err != nil {
			return fmt.Errorf("pager failed: %w", err)
		}
	} else if err := render.Render(cmd.OutOrStdout(), format, view, reviewWidth); err != nil {
		return fmt.Errorf("failed to render review: %w", err)
	}

	if report.RecordID != "" {
		logger.Info().Str("id", report.RecordID).Msg("review archived")
	}

	if !report.Result.Succeeded() && reviewStrict {
		return errReviewFailed
	}
	return nil
}
