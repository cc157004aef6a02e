package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/jobmatch/internal/advisor"
	"github.com/spigell/jobmatch/internal/catalog"
	"github.com/spigell/jobmatch/internal/embedding"
	"github.com/spigell/jobmatch/internal/embedding/gemini"
	"github.com/spigell/jobmatch/internal/embedding/hashing"
	"github.com/spigell/jobmatch/internal/logger"
	"github.com/spigell/jobmatch/internal/matching"
	"github.com/spigell/jobmatch/internal/secrets"
)

const (
	PromptTrainings     = "Show recommended trainings"
	PromptGapSkills     = "Show missing skills"
	PromptResultsToFile = "Dump results to file"
	PromptReload        = "Reload catalog and match again"
	PromptExit          = "Exit"

	geminiAPIKeyEnv = "GEMINI_API_KEY"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptTrainings, PromptGapSkills, PromptResultsToFile, PromptReload, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank catalog occupations for a profile and recommend trainings",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("profile", "p", "", "profile file in YAML or JSON")
	matchCmd.Flags().IntP("top-k", "k", 0, "number of occupations to return (overrides matching.top-k)")
	matchCmd.Flags().BoolP("yes", "y", false, "print the whole analysis without asking what to do next")

	matchCmd.MarkFlagRequired("profile")
}

func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the jobmatch", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	profilePath, _ := cmd.Flags().GetString("profile")
	profile, err := loadProfile(profilePath)
	if err != nil {
		logger.Fatal("loading the profile", zap.Error(err))
	}

	if k, _ := cmd.Flags().GetInt("top-k"); k > 0 {
		config.Matching.TopK = k
	}

	store := catalog.NewStore(config.Catalog, logger.Named("catalog"))

	svc, err := newService(config, store, logger)
	if err != nil {
		logger.Fatal("preparing the matcher", zap.Error(err))
	}

	if err := svc.Init(ctx); err != nil {
		logger.Fatal("initializing the matcher", zap.Error(err), hintFor(err))
	}

	analysis, err := svc.Analyze(ctx, profile)
	if err != nil {
		logger.Fatal("analyzing the profile", zap.Error(err), hintFor(err))
	}

	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		printJSON(analysis)
		return
	}

	printJSON(analysis.Matches)

	s := &session{svc: svc, profile: profile, analysis: analysis}
	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, logger, s); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// session is the state the action prompt works on.
type session struct {
	svc      *advisor.Service
	profile  matching.Profile
	analysis *advisor.Analysis
}

func handleAction(ctx context.Context, action string, logger *zap.Logger, s *session) error {
	switch action {
	case PromptTrainings:
		if len(s.analysis.Trainings) == 0 {
			logger.Info("no trainings cover the missing skills", zap.Strings("gap_skills", s.analysis.GapSkills))
			return nil
		}
		printJSON(s.analysis.Trainings)
		return nil
	case PromptGapSkills:
		printJSON(s.analysis.GapSkills)
		return nil
	case PromptResultsToFile:
		filename, err := dumpToTmpFile(s.analysis)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptReload:
		if err := s.svc.Reload(ctx); err != nil {
			logger.Warn("reload failed, keeping the current catalog", zap.Error(err), hintFor(err))
			return nil
		}

		analysis, err := s.svc.Analyze(ctx, s.profile)
		if err != nil {
			return fmt.Errorf("analyzing after reload: %w", err)
		}
		s.analysis = analysis

		logger.Info("catalog reloaded", zap.Uint64("generation", s.svc.Generation().ID))
		printJSON(s.analysis.Matches)
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func newService(config *Config, store *catalog.Store, log *zap.Logger) (*advisor.Service, error) {
	embedder, err := newEmbedder(config.Embedder, log)
	if err != nil {
		return nil, err
	}

	return advisor.New(store, embedder, advisor.Options{
		TopK:                config.Matching.TopK,
		TrainingTopK:        config.Training.TopK,
		MaxGapSkills:        config.Training.MaxGapSkills,
		ReinforcementSkills: config.Training.ReinforcementSkills,
		Policy:              config.Matching.Policy,
	}, log)
}

func newEmbedder(cfg *EmbedderConfig, log *zap.Logger) (embedding.Embedder, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "hashing":
		dimensions := 0
		if cfg.Hashing != nil {
			dimensions = cfg.Hashing.Dimensions
		}
		embedder := hashing.New(dimensions)
		log.Info("using offline hashing embedder", zap.String(logger.FieldModel, embedder.Model()))
		return embedder, nil
	case "", gemini.Provider:
		gcfg := GeminiConfig{}
		if cfg.Gemini != nil {
			gcfg = *cfg.Gemini
		}

		model := strings.TrimSpace(gcfg.Model)
		if model == "" {
			model = gemini.DefaultModel
		}

		load := func(ctx context.Context) (embedding.Embedder, error) {
			apiKey, err := secrets.Load(secrets.Source{
				Name:  "gemini api key",
				Value: gcfg.APIKey,
				File:  gcfg.APIKeyFile,
				Env:   geminiAPIKeyEnv,
			})
			if err != nil {
				return nil, fmt.Errorf("%w (set embedder.gemini.api-key-file, JOBMATCH_GEMINI_API_KEY_FILE or %s)", err, geminiAPIKeyEnv)
			}

			embedder, err := gemini.New(ctx, gemini.Config{
				APIKey:      apiKey,
				Model:       model,
				MaxRetries:  gcfg.MaxRetries,
				BatchSize:   gcfg.BatchSize,
				Concurrency: gcfg.Concurrency,
				Dimensions:  gcfg.Dimensions,
			}, log)
			if err != nil {
				return nil, err
			}
			return embedder, nil
		}

		return embedding.NewLazy(gemini.Provider, model, load, log), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

func loadProfile(path string) (matching.Profile, error) {
	var profile matching.Profile

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("reading profile: %w", err)
	}

	// YAML is a superset of JSON, so both formats decode here.
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("decoding profile %q: %w", path, err)
	}

	return profile, profile.Validate()
}

func hintFor(err error) zap.Field {
	var unavailable *embedding.ModelUnavailableError
	var load *catalog.LoadError

	switch {
	case errors.As(err, &unavailable):
		return zap.String("hint", "check the embedder section of the configuration and the api key")
	case errors.As(err, &load):
		return zap.String("hint", "check the catalog section of the configuration; run the catalog command to validate the files")
	case errors.Is(err, matching.ErrDimensionMismatch):
		return zap.String("hint", "the profile and the catalog were embedded by different models")
	default:
		return zap.Skip()
	}
}

func printJSON(v any) {
	// do not bother error since all printed values are plain structs
	pretty, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(pretty))
}

func dumpToTmpFile(analysis *advisor.Analysis) (string, error) {
	file, err := os.CreateTemp("", app+"_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(analysis); err != nil {
		return "", err
	}
	return file.Name(), nil
}
