package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"

	"github.com/spigell/hh-interviewer/internal/ai/guard"
	"github.com/spigell/hh-interviewer/internal/ats"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "hh-interviewer"
	envPrefix = "HH_INTERVIEWER"
)

type Config struct {
	Interview interview.Config `mapstructure:"interview"`
	AI        *AIConfig        `mapstructure:"ai"`
	Storage   storage.Config   `mapstructure:"storage"`
	JobFile   string           `mapstructure:"job-file"`
	ATS       *ats.Config      `mapstructure:"ats"`
}

type AIConfig struct {
	Provider string `mapstructure:"provider"`
	// AnswerTokenBudget caps the answer embedded into the judge prompt.
	AnswerTokenBudget int           `mapstructure:"answer-token-budget"`
	MaxLogLength      int           `mapstructure:"max-log-length"`
	Guard             guard.Config  `mapstructure:"guard"`
	Gemini            *GeminiConfig `mapstructure:"gemini"`
	OpenAI            *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	BaseURL    string `mapstructure:"base-url"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hh-interviewer runs screening interviews and grades the answers with an LLM judge",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"ai.openai.api-key-file": "OPENAI_API_KEY_FILE",
		"ats.token-file":         envPrefix + "_ATS_TOKEN_FILE",
		"job-file":               envPrefix + "_JOB_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("job-file", "", "yaml file with job profiles")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("job-file", rootCmd.PersistentFlags().Lookup("job-file"))
}

func initConfig() {
	// Only run and serve need a config.
	if runCmd.CalledAs() == "" && serveCmd.CalledAs() == "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// An explicit config must parse. Without one the defaults are used.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		Interview: interview.DefaultConfig(),
		AI: &AIConfig{
			Provider:          "gemini",
			AnswerTokenBudget: 1500,
			MaxLogLength:      400,
			Guard:             guard.DefaultConfig(),
			Gemini: &GeminiConfig{
				Model:      "gemini-2.5-flash",
				MaxRetries: 3,
			},
			OpenAI: &OpenAIConfig{
				Model:      "gpt-4o-mini",
				MaxRetries: 3,
			},
		},
		Storage: storage.DefaultConfig(),
	}
}

// getConfig overlays the config file and environment on top of the defaults.
func getConfig() (*Config, error) {
	config := defaultConfig()
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}
	if err := config.Interview.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
