package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bookmind/bookmind/internal/embed"
	"github.com/bookmind/bookmind/internal/index"
	"github.com/bookmind/bookmind/internal/logging"
	"github.com/bookmind/bookmind/internal/search"
	"github.com/bookmind/bookmind/internal/storage"
)

// newSearchCmd creates the search command: build the index from the
// database and run one query against it.
func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a one-off semantic search from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger, cleanup, err := logging.Setup(logging.Config{
				Level: "warn", WriteToStderr: true,
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
			if _, err := r.ReindexAll(cmd.Context()); err != nil {
				return err
			}

			query := strings.Join(args, " ")
			if limit <= 0 {
				limit = cfg.Search.DefaultLimit
			}

			hits, err := search.NewService(store, embedder).Search(cmd.Context(), query, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(hits) == 0 {
				fmt.Fprintln(out, "No results.")
				return nil
			}
			for i, hit := range hits {
				fmt.Fprintf(out, "%2d. %-40s %-24s %.4f\n",
					i+1, hit.Metadata.Title, hit.Metadata.Author, hit.Score)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results")
	return cmd
}
