// Package cmd provides the CLI commands for bookmind.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bookmind/bookmind/internal/config"
	"github.com/bookmind/bookmind/pkg/version"
)

var configPath string

// NewRootCmd creates the root command for the bookmind CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmind",
		Short: "Book catalog with semantic search",
		Long: `Bookmind is a book-management service with an embedded semantic
search core: book and review text is embedded into vectors and queries
are answered by cosine-similarity ranking over an in-memory index.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("bookmind version {{.Version}}\n")
	cmd.PersistentFlags().StringVar(&configPath, "config", "bookmind.yaml", "Path to config file")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newReindexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newUsersCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	// Local development keys (e.g. OPENROUTER_API_KEY) live in .env.
	_ = godotenv.Load()

	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// loadConfig loads the configuration from the --config flag.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}
