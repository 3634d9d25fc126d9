package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acmeliving/sophie-go/internal/service"
)

var seedReset bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the community knowledge base",
	Long: `Seed embeds the bundled community facts and stores them in the
knowledge base. Without --reset an already-seeded database is left alone.

Examples:
  sophie seed
  sophie seed --reset`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "clear existing knowledge before seeding")
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := initLLM(); err != nil {
		return err
	}

	seeder := service.NewSeeder(dbClient, embedder)
	result, err := seeder.Seed(context.Background(), seedReset)
	if err != nil {
		return fmt.Errorf("seed knowledge base: %w", err)
	}

	if result.Created == 0 && result.Failed == 0 {
		fmt.Printf("Knowledge base already seeded (%d facts available).\n", result.Total)
		return nil
	}

	fmt.Printf("Seeded %d/%d facts", result.Created, result.Total)
	if result.Failed > 0 {
		fmt.Printf(" (%d failed)", result.Failed)
	}
	fmt.Println()
	return nil
}
