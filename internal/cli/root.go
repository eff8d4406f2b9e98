package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"clausecheck/config"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
	logger   = zerolog.Nop()
)

// errReviewFailed is returned by review --strict when the remote call did
// not produce a review. The user-facing message has already been printed.
var errReviewFailed = errors.New("review failed")

var rootCmd = &cobra.Command{
	Use:   "clausecheck",
	Short: "Flag unfair contract clauses with a retrieval-augmented LLM review",
	Long: `clausecheck splits a contract into overlapping chunks, finds the clauses most
relevant to an unfairness review, and asks a chat-completion model to flag
illegal or unfair clauses and propose fair replacements.

The API key is read from OPENAI_API_KEY and the endpoint from OPENAI_BASE_URL
(default https://openrouter.ai/api/v1/). A .env file in the working directory
(or --dir) is loaded first.

Example usage:
  clausecheck review contract.txt             # Review a contract
  clausecheck review contract.pdf --pager     # Read the review in a pager
  clausecheck retrieve contract.txt           # Show which clauses would be sent`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		// Real environment variables win over .env.
		if err := godotenv.Load(filepath.Join(rootDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = newLogger(cfg.Logging.Level, logLevel)
		return err
	},
}

// Execute runs the root command and exits with 1 on errors and 2 when a
// strict review failed.
func Execute() {
	err := rootCmd.Execute()
	switch {
	case err == nil:
	case errors.Is(err, errReviewFailed):
		os.Exit(2)
	default:
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./clausecheck.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "directory to look for config in (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
}

// newLogger writes human-readable logs to stderr so stdout stays clean for
// the rendered review.
func newLogger(configured, override string) (zerolog.Logger, error) {
	levelName := configured
	if override != "" {
		levelName = override
	}
	if levelName == "" {
		levelName = "warn"
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", levelName, err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger(), nil
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
