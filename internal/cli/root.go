// Package cli provides the command-line interface for the Sophie sales
// assistant: seeding the knowledge base, a terminal chat, and prospect
// inspection.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/acmeliving/sophie-go/internal/agent"
	"github.com/acmeliving/sophie-go/internal/config"
	"github.com/acmeliving/sophie-go/internal/db"
	"github.com/acmeliving/sophie-go/internal/llm"
	"github.com/acmeliving/sophie-go/internal/metrics"
	"github.com/acmeliving/sophie-go/internal/rag"
	"github.com/acmeliving/sophie-go/internal/service"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and db client
	cfg      config.Config
	dbClient *db.Client

	// Lazy-initialized LLM components
	collector *metrics.Collector
	embedder  *llm.Embedder
	model     *llm.Model
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sophie",
	Short: "Senior living sales assistant",
	Long: `Sophie is a conversational sales assistant for senior living
communities. She answers pricing, amenity, and financing questions from a
grounded knowledge base, schedules tours, and builds up a profile of each
prospect as the conversation unfolds.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		collector = metrics.NewCollector()

		ctx := context.Background()
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		var err error
		dbClient, err = db.NewClient(ctx, dbCfg, nil)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx, cfg.EmbedDimension); err != nil {
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

// initLLM sets up the embedder and model once per invocation.
func initLLM() error {
	if embedder != nil {
		return nil
	}

	var err error
	embedder, err = llm.NewEmbedder(cfg, collector)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}
	model, err = llm.NewModel(cfg, collector)
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}
	return nil
}

// newChatService wires a full conversation stack on top of the shared
// clients.
func newChatService() (*service.ChatService, error) {
	if err := initLLM(); err != nil {
		return nil, err
	}

	retriever := rag.NewRetriever(embedder, dbClient, collector)
	pipeline := agent.NewPipeline(model, retriever, llm.NewEventExtractor(model), collector, agent.Options{
		AgentName:     cfg.AgentName,
		CommunityName: cfg.CommunityName,
	})
	return service.NewChatService(dbClient, pipeline), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(prospectsCmd)
}
