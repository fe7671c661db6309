package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/joblo/internal/filtering"
	"github.com/spigell/joblo/internal/scoring"
)

const (
	app = "joblo"
)

type Config struct {
	Jobs       *JobsConfig         `mapstructure:"jobs"`
	Vocabulary *VocabularyConfig   `mapstructure:"vocabulary"`
	Filters    *filtering.Config   `mapstructure:"filters"`
	Scoring    *ScoringConfig      `mapstructure:"scoring"`
	AI         *filtering.AIConfig `mapstructure:"ai"`
	Server     *ServerConfig       `mapstructure:"server"`
}

type JobsConfig struct {
	// Store is either "file" (default) or "mongo".
	Store string       `mapstructure:"store"`
	File  string       `mapstructure:"file"`
	Mongo *MongoConfig `mapstructure:"mongo"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	URIFile    string `mapstructure:"uri-file"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// VocabularyConfig replaces the built-in skill and city tables when set.
type VocabularyConfig struct {
	Skills []string `mapstructure:"skills"`
	Cities []string `mapstructure:"cities"`
}

type ScoringConfig struct {
	Weights *scoring.Weights `mapstructure:"weights"`
	TopK    int              `mapstructure:"top-k"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "joblo matches résumés against scraped job postings and recommends similar jobs",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"jobs.mongo.uri-file":    "JOBLO_MONGO_URI_FILE",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is joblo.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("jobs", "", "scraped jobs JSON file (overrides jobs.file)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("jobs.file", rootCmd.PersistentFlags().Lookup("jobs"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every setting has a default, so only an explicit or broken config is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}
	config.applyDefaults()

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Jobs == nil {
		c.Jobs = &JobsConfig{}
	}
	if c.Jobs.Store == "" {
		c.Jobs.Store = "file"
	}
	if c.Jobs.File == "" {
		c.Jobs.File = "jobs.json"
	}
	if c.Vocabulary == nil {
		c.Vocabulary = &VocabularyConfig{}
	}
	if c.Filters == nil {
		c.Filters = &filtering.Config{}
	}
	if c.Scoring == nil {
		c.Scoring = &ScoringConfig{}
	}
	if c.Scoring.TopK <= 0 {
		c.Scoring.TopK = 10
	}
	if c.AI == nil {
		c.AI = &filtering.AIConfig{}
	}
	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	c.Filters.AI = c.AI
}
