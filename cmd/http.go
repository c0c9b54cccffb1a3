package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/seta/internal/db"
	"github.com/ziadkadry99/seta/internal/history"
	"github.com/ziadkadry99/seta/internal/indexer"
	"github.com/ziadkadry99/seta/internal/server"
)

var httpCmd = &cobra.Command{
	Use:   "http [folder]",
	Short: "Serve search over HTTP",
	Long: `Starts an HTTP server exposing the folder's index:

  GET /api/search?q=<query>&limit=&library=&topic=&difficulty=
  GET /api/stats
  GET /api/runs, /api/runs/{id}
  GET /healthz`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		addr, _ := cmd.Flags().GetString("addr")
		allowAll, _ := cmd.Flags().GetBool("allow-all-origins")

		folder, err := folderArg(args, 0)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd, folder)
		if err != nil {
			return err
		}
		indexDir := cfg.IndexDir(folder, dbPath)

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

		database, err := db.Open(filepath.Join(indexDir, db.FileName))
		if err != nil {
			return err
		}
		defer database.Close()

		srv := server.New(server.Config{
			Addr:     addr,
			IndexDir: indexDir,
			AllowAll: allowAll,
		}, store, embedder, history.NewStore(database), logger)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			logger.Info("shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("HTTP shutdown", zap.Error(err))
			}
			return <-errCh
		}
	},
}

func init() {
	httpCmd.Flags().String("addr", "127.0.0.1:8080", "listen address")
	httpCmd.Flags().Bool("allow-all-origins", false, "allow cross-origin requests from any origin")
	rootCmd.AddCommand(httpCmd)
}
