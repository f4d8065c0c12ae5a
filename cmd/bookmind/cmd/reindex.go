package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookmind/bookmind/internal/embed"
	"github.com/bookmind/bookmind/internal/index"
	"github.com/bookmind/bookmind/internal/logging"
	"github.com/bookmind/bookmind/internal/storage"
)

// newReindexCmd creates the reindex command. The index itself is
// process-local, so this is a validation pass: it embeds every book the
// way the server would at startup and reports which ones fail.
func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Embed every book and report failures",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger, cleanup, err := logging.Setup(logging.Config{
				Level: cfg.Logging.Level, WriteToStderr: true,
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

			embedder, err := embed.NewEmbedder(cmd.Context(), cfg.Embeddings)
			if err != nil {
				return err
			}
			defer embedder.Close()

			store := index.NewStore(embedder.Dimensions())
			r := index.NewReindexer(store, embedder, db,
				cfg.Search.MaxReviews, cfg.Reindex.Workers, logger)

			summary, err := r.ReindexAll(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Indexed %d books (%d failed)\n",
				len(summary.Succeeded), len(summary.Failed))
			for _, id := range summary.Failed {
				fmt.Fprintf(out, "  failed: book %d\n", id)
			}
			return nil
		},
	}
}
