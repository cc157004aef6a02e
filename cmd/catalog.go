package cmd

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/catalog"
	"github.com/spigell/jobmatch/internal/logger"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Load and validate the catalog files",
	Run: func(cmd *cobra.Command, _ []string) {
		checkCatalog(cmd)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().Bool("vectorize", false, "also embed the occupations with the configured embedder")
}

func checkCatalog(cmd *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store := catalog.NewStore(config.Catalog, logger.Named("catalog"))

	gen, err := store.Reload()
	if err != nil {
		logger.Fatal("loading the catalog", zap.Error(err), hintFor(err))
	}

	if gen.Placeholders() > 0 {
		logger.Warn("some occupations have no title or description and will be shown with placeholders",
			zap.Int("count", gen.Placeholders()),
		)
	}

	printJSON(catalogSummary{
		Generation:   gen.ID,
		LoadedAt:     gen.LoadedAt,
		Occupations:  len(gen.Occupations),
		Trainings:    len(gen.Trainings),
		Placeholders: gen.Placeholders(),
	})

	if vectorize, _ := cmd.Flags().GetBool("vectorize"); !vectorize {
		return
	}

	ctx := context.Background()

	svc, err := newService(config, store, logger)
	if err != nil {
		logger.Fatal("preparing the matcher", zap.Error(err))
	}

	if err := svc.Init(ctx); err != nil {
		logger.Fatal("vectorizing the catalog", zap.Error(err), hintFor(err))
	}

	served := svc.Generation()
	logger.Info("catalog is ready for matching",
		zap.Uint64("generation", served.ID),
		zap.Time("loaded_at", served.LoadedAt),
	)
}

type catalogSummary struct {
	Generation   uint64    `json:"generation"`
	LoadedAt     time.Time `json:"loaded_at"`
	Occupations  int       `json:"occupations"`
	Trainings    int       `json:"trainings"`
	Placeholders int       `json:"placeholders"`
}
