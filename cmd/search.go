package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/seta/internal/indexer"
	"github.com/ziadkadry99/seta/internal/search"
	"github.com/ziadkadry99/seta/internal/vectordb"
)

var searchCmd = &cobra.Command{
	Use:   "search <query> [folder]",
	Short: "Semantically search an indexed documentation folder",
	Long: `Embeds the query with the model the folder was indexed with and returns the
most relevant chunks. Results can be narrowed to a library, topic or
difficulty.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", search.DefaultLimit, "maximum number of results")
	searchCmd.Flags().String("library", "", "only return chunks from this library")
	searchCmd.Flags().String("topic", "", "only return chunks from this topic")
	searchCmd.Flags().String("difficulty", "", "only return chunks with this difficulty")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	queryText := args[0]

	limit, _ := cmd.Flags().GetInt("limit")
	library, _ := cmd.Flags().GetString("library")
	topic, _ := cmd.Flags().GetString("topic")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if limit <= 0 {
		return fmt.Errorf("%w, got %d", search.ErrInvalidLimit, limit)
	}

	folder, err := folderArg(args, 1)
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
	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	if err := checkIndexModel(state, embedder); err != nil {
		return err
	}

	store, err := openStore(indexDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if store.Count() == 0 {
		fmt.Fprintf(out, "Index at %s is empty. Run `seta index %s` first.\n", indexDir, folder)
		return nil
	}

	filter := vectordb.SearchFilter{LibraryID: library, TopicName: topic, Difficulty: difficulty}
	results, err := search.NewService(store, embedder, logger).Search(ctx, queryText, limit, filter)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		return printSearchResultsJSON(out, results)
	}
	fmt.Fprint(out, vectordb.FormatResults(results))
	return nil
}

func printSearchResultsJSON(w io.Writer, results []vectordb.SearchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(search.Hits(results))
}
