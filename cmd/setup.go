package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/joblo/internal/ai"
	"github.com/spigell/joblo/internal/ai/gemini"
	"github.com/spigell/joblo/internal/filtering"
	"github.com/spigell/joblo/internal/jobs"
	"github.com/spigell/joblo/internal/logger"
	"github.com/spigell/joblo/internal/recommend"
	"github.com/spigell/joblo/internal/resume"
	"github.com/spigell/joblo/internal/scoring"
	"github.com/spigell/joblo/internal/secrets"
)

// env holds everything a command needs once the config is read.
type env struct {
	config    *Config
	logger    *zap.Logger
	store     jobs.Store
	filters   []filtering.Filter
	pool      *filtering.Source
	extractor *resume.Extractor
	scorer    *scoring.Scorer
}

func setup(ctx context.Context) *env {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	store, err := openStore(ctx, config.Jobs, logger)
	if err != nil {
		logger.Fatal("opening job store", zap.Error(err), zap.String("store", config.Jobs.Store))
	}

	// The AI step is expensive, so the candidate pool never runs it. Commands
	// apply it to their shortlist instead.
	steps := filtering.Default()
	filtering.DisableByName(steps, filtering.AIFitName, "runs on shortlisted matches only")

	return &env{
		config:    config,
		logger:    logger,
		store:     store,
		filters:   steps,
		pool:      filtering.NewSource(store, config.Filters, filtering.Deps{Logger: logger}, steps),
		extractor: newExtractor(config.Vocabulary, logger),
		scorer:    newScorer(config.Scoring, logger),
	}
}

func (e *env) recommender() *recommend.Recommender {
	return recommend.New(e.pool, e.scorer, e.extractor, e.logger)
}

func (e *env) close(ctx context.Context) {
	if err := e.store.Close(ctx); err != nil {
		e.logger.Warn("closing job store", zap.Error(err))
	}
	_ = e.logger.Sync()
}

func openStore(ctx context.Context, cfg *JobsConfig, logger *zap.Logger) (jobs.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "", "file":
		logger.Debug("using file job store", zap.String("path", cfg.File))
		return jobs.NewFileStore(cfg.File), nil
	case "mongo":
		mongoCfg := cfg.Mongo
		if mongoCfg == nil {
			mongoCfg = &MongoConfig{}
		}
		uri, err := secrets.Load(secrets.Source{
			Name:  "mongo uri",
			Value: mongoCfg.URI,
			File:  mongoCfg.URIFile,
			Env:   "JOBLO_MONGO_URI",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set jobs.mongo.uri-file or JOBLO_MONGO_URI_FILE)", err)
		}
		store, err := jobs.NewMongoStore(ctx, jobs.MongoConfig{
			URI:        uri,
			Database:   mongoCfg.Database,
			Collection: mongoCfg.Collection,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown job store %q", cfg.Store)
	}
}

func newExtractor(cfg *VocabularyConfig, logger *zap.Logger) *resume.Extractor {
	opts := []resume.Option{resume.WithLogger(logger)}
	if len(cfg.Skills) > 0 {
		opts = append(opts, resume.WithVocabulary(resume.NewVocabulary(cfg.Skills)))
	}
	if len(cfg.Cities) > 0 {
		opts = append(opts, resume.WithGazetteer(resume.NewCityGazetteer(cfg.Cities)))
	}
	return resume.NewExtractor(opts...)
}

func newScorer(cfg *ScoringConfig, logger *zap.Logger) *scoring.Scorer {
	opts := []scoring.Option{scoring.WithLogger(logger)}
	if cfg.Weights != nil {
		opts = append(opts, scoring.WithWeights(*cfg.Weights))
	}
	return scoring.NewScorer(opts...)
}

func newAIMatcher(ctx context.Context, cfg *filtering.AIConfig, base *zap.Logger) (ai.Matcher, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.ProviderName {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil {
		cfg.Gemini = &filtering.GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries,
		base.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries)))
	if err != nil {
		return nil, err
	}
	// the generator falls back to its default model, so report what it picked
	cfg.Gemini.Model = generator.Model()

	minScore := cfg.MinimumFitScore
	if minScore < 0 {
		minScore = 0
	}

	matcherLogger := logger.WithCommonFields(base, gemini.ProviderName, generator.Model()).
		With(zap.Float64("minimum_fit_score", minScore))

	return gemini.NewMatcher(generator, minScore, cfg.Gemini.MaxLogLength, matcherLogger).WithCriteria(cfg.Criteria), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
