package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/seta/internal/indexer"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [folder]",
	Short: "Delete the index of a folder",
	Long:  `Removes the index directory (vectors, fingerprints and lock). The documentation itself is not touched.`,
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
			fmt.Fprintf(out, "No index found at %s.\n", indexDir)
			return nil
		}

		// Refuse while an index run is writing.
		lock := indexer.NewIndexLock(indexDir)
		if err := lock.TryLock(); err != nil {
			return err
		}
		defer lock.Unlock()

		if err := os.RemoveAll(indexDir); err != nil {
			return fmt.Errorf("removing index: %w", err)
		}
		fmt.Fprintf(out, "Removed index at %s\n", indexDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
