package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/seta/internal/logging"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string
	dbPath    string

	// logger is built once flags are parsed.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "seta [folder]",
	Short: "Incremental semantic indexing and search for documentation trees",
	Long: `seta indexes a folder of documentation (Markdown, text, PDF and more) into a
local vector database and answers natural-language queries against it.
Re-running the indexer only re-embeds files whose content changed.

Running "seta <folder>" is the same as "seta index <folder>".`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(logging.Options{Verbose: verbose, Format: logFormat, Output: cmd.ErrOrStderr()})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync(logger)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runIndex(cmd, args)
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context, so an interrupted index run still saves its progress.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default <folder>/.seta.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format: console or json")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "", "index directory (default <folder>/.seta_index)")
	addIndexFlags(rootCmd)
}
