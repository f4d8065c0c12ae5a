package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookmind/bookmind/internal/embed"
	"github.com/bookmind/bookmind/internal/index"
	"github.com/bookmind/bookmind/internal/logging"
	"github.com/bookmind/bookmind/internal/server"
	"github.com/bookmind/bookmind/internal/storage"
	"github.com/bookmind/bookmind/internal/summarize"
)

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	var skipInitialReindex bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Start the bookmind HTTP server. On startup the vector index is
populated from the books already in the database, then the API begins
serving search, CRUD, and reindex requests.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), skipInitialReindex)
		},
	}

	cmd.Flags().BoolVar(&skipInitialReindex, "skip-reindex", false, "Skip index population at startup")
	return cmd
}

func runServe(ctx context.Context, skipInitialReindex bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, cleanup, err := logging.Setup(logging.Config{
		Level:         cfg.Logging.Level,
		FilePath:      cfg.Logging.File,
		WriteToStderr: true,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	embedder, err := embed.NewEmbedder(ctx, cfg.Embeddings)
	if err != nil {
		return err
	}
	defer embedder.Close()

	summarizer, err := summarize.New(cfg.Summarizer)
	if err != nil {
		return err
	}

	store := index.NewStore(embedder.Dimensions())
	srv := server.New(cfg, logger, db, store, embedder, summarizer)

	if !skipInitialReindex {
		summary, err := srv.Reindexer().ReindexAll(ctx)
		if err != nil {
			return err
		}
		logger.Info("initial index populated",
			"succeeded", len(summary.Succeeded),
			"failed", len(summary.Failed))
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
