package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/seta/internal/indexer"
)

var statsCmd = &cobra.Command{
	Use:   "stats [folder]",
	Short: "Show what the index of a folder contains",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		folder, err := folderArg(args, 0)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd, folder)
		if err != nil {
			return err
		}
		indexDir := cfg.IndexDir(folder, dbPath)
		if !indexExists(indexDir) {
			fmt.Fprintf(out, "No index found at %s. Run `seta index %s` first.\n", indexDir, folder)
			return nil
		}

		state, err := indexer.LoadState(indexDir)
		if err != nil {
			return err
		}
		store, err := openStore(indexDir)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading index stats: %w", err)
		}

		fmt.Fprintf(out, "Index: %s\n", indexDir)
		fmt.Fprint(out, indexer.FormatStats(stats, state))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
