package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/seta/internal/db"
	"github.com/ziadkadry99/seta/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history [folder]",
	Short: "List past indexing runs of a folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		limit, _ := cmd.Flags().GetInt("limit")
		status, _ := cmd.Flags().GetString("status")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		folder, err := folderArg(args, 0)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd, folder)
		if err != nil {
			return err
		}
		indexDir := cfg.IndexDir(folder, dbPath)
		path := filepath.Join(indexDir, db.FileName)
		if _, err := os.Stat(path); err != nil {
			fmt.Fprintf(out, "No run history at %s.\n", indexDir)
			return nil
		}

		database, err := db.Open(path)
		if err != nil {
			return err
		}
		defer database.Close()

		runs, err := history.NewStore(database).List(cmd.Context(), history.Filter{
			Status: history.Status(status),
			Limit:  limit,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded.")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tSTATUS\tPROCESSED\tSKIPPED\tFAILED\tREMOVED\tCHUNKS\tDURATION")
		for _, r := range runs {
			label := string(r.Status)
			if r.Forced {
				label += " (forced)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				label, r.FilesProcessed, r.FilesSkipped, r.FilesFailed, r.FilesDeleted,
				r.StoreChunks, r.Duration.Round(time.Millisecond))
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().String("status", "", "only list runs with this status: completed, interrupted, failed")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")
	rootCmd.AddCommand(historyCmd)
}
