package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/seta/internal/indexer"
	mcpserver "github.com/ziadkadry99/seta/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve [folder]",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing documentation search tools for AI agents.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder, err := folderArg(args, 0)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd, folder)
		if err != nil {
			return err
		}
		indexDir := cfg.IndexDir(folder, dbPath)

		// Create embedder for query embedding during search.
		embedder, err := createEmbedderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}
		state, err := indexer.LoadState(indexDir)
		if err != nil {
			return err
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
			logger.Warn("index is empty, search results will be empty until the folder is indexed",
				zap.String("index", indexDir))
		}

		mcpserver.Version = Version

		logger.Info("MCP server started on stdio",
			zap.String("index", indexDir),
			zap.Int("chunks", store.Count()),
		)

		srv := mcpserver.NewServer(store, embedder, indexDir, logger)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
