// Package cli provides the chatcore command-line interface for content
// indexing and one-shot question answering.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/induxo/chatcore/internal/config"
	"github.com/induxo/chatcore/internal/db"
	"github.com/induxo/chatcore/internal/llm"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	verbose bool

	// Global config and db client
	cfg      config.Config
	dbClient *db.Client

	// Lazy-initialized LLM components
	embedder  *llm.Embedder
	completer *llm.Completer
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "chatcore",
	Short: "Content indexing and chat tooling for the support assistant",
	Long: `Chatcore manages the knowledge base behind the customer support
assistant: index content items with embeddings, inspect what is stored,
and ask one-shot questions against the same retrieval pipeline the chat
channels use.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		if verbose {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}
		slog.SetDefault(logger)

		ctx := cmd.Context()
		dbClient, err = db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
			Dimension: cfg.EmbedDimension,
		}, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
	},
}

// getEmbedder initializes the embedder on first use. The count command
// never needs it, so connection to the embedding provider stays lazy.
func getEmbedder() (*llm.Embedder, error) {
	if embedder == nil {
		var err error
		embedder, err = llm.NewEmbedder(cfg, nil)
		if err != nil {
			return nil, fmt.Errorf("init embedder: %w", err)
		}
	}
	return embedder, nil
}

func getCompleter(ctx context.Context) (*llm.Completer, error) {
	if completer == nil {
		var err error
		completer, err = llm.NewCompleter(ctx, cfg, nil)
		if err != nil {
			return nil, fmt.Errorf("init completion models: %w", err)
		}
	}
	return completer, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, defaultTheme.errorStyle().Render("Error: "+err.Error()))
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(countCmd)
}
