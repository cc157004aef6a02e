package cmd

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/jobmatch/internal/catalog"
	"github.com/spigell/jobmatch/internal/matching"
	"github.com/spigell/jobmatch/internal/training"
)

const (
	app = "jobmatch"
)

type Config struct {
	Catalog  catalog.Source  `mapstructure:"catalog"`
	Embedder *EmbedderConfig `mapstructure:"embedder"`
	Matching *MatchingConfig `mapstructure:"matching"`
	Training *TrainingConfig `mapstructure:"training"`
}

type EmbedderConfig struct {
	Provider string         `mapstructure:"provider"`
	Gemini   *GeminiConfig  `mapstructure:"gemini"`
	Hashing  *HashingConfig `mapstructure:"hashing"`
}

type GeminiConfig struct {
	APIKey      string `mapstructure:"api-key" json:"-"`
	APIKeyFile  string `mapstructure:"api-key-file"`
	Model       string `mapstructure:"model"`
	MaxRetries  int    `mapstructure:"max-retries"`
	BatchSize   int    `mapstructure:"batch-size"`
	Concurrency int    `mapstructure:"concurrency"`
	Dimensions  int    `mapstructure:"dimensions"`
}

type HashingConfig struct {
	Dimensions int `mapstructure:"dimensions"`
}

type MatchingConfig struct {
	TopK            int `mapstructure:"top-k"`
	matching.Policy `mapstructure:",squash"`
}

type TrainingConfig struct {
	TopK                int `mapstructure:"top-k"`
	MaxGapSkills        int `mapstructure:"max-gap-skills"`
	ReinforcementSkills int `mapstructure:"reinforcement-skills"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobmatch ranks occupations for a candidate profile and recommends trainings for the missing skills",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("embedder.gemini.api-key-file", "JOBMATCH_GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding JOBMATCH_GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("embedder.provider", "gemini")
	viper.SetDefault("matching.top-k", 5)
	viper.SetDefault("matching.weak-match-threshold", matching.DefaultWeakMatchThreshold)
	viper.SetDefault("matching.skill-weight", matching.DefaultSkillWeight)
	viper.SetDefault("matching.title-weight", matching.DefaultTitleWeight)
	viper.SetDefault("matching.alternative-reason", matching.DefaultAlternativeReason)
	viper.SetDefault("training.top-k", 3)
	viper.SetDefault("training.max-gap-skills", 5)
	viper.SetDefault("training.reinforcement-skills", training.DefaultReinforcementSkills)
}

func initConfig() {
	// Only commands touching the catalog need a config.
	if matchCmd.CalledAs() == "" && catalogCmd.CalledAs() == "" {
		return
	}

	// .env is optional; it only feeds environment bindings like GEMINI_API_KEY.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Embedder == nil {
		config.Embedder = &EmbedderConfig{}
	}
	if config.Matching == nil {
		config.Matching = &MatchingConfig{Policy: matching.DefaultPolicy()}
	}
	if config.Training == nil {
		config.Training = &TrainingConfig{}
	}

	return config, nil
}
