// Package filtering narrows the candidate pool before it reaches the scorer.
package filtering

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/joblo/internal/ai"
	"github.com/spigell/joblo/internal/jobs"
	"github.com/spigell/joblo/internal/resume"
)

// Filter represents a single filtering step applied to postings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, v *jobs.Jobs) (*jobs.Jobs, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger  *zap.Logger
	Profile *resume.Profile
	Matcher ai.Matcher
	Now     func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

type Config struct {
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	Sources          []string `mapstructure:"sources"`
	Locations        []string `mapstructure:"locations"`
	RedFlags         []string `mapstructure:"red-flags"`
	ExcludeFile      string   `mapstructure:"exclude-file"`
	MaxAgeDays       int      `mapstructure:"max-age-days"`
	AI               *AIConfig
}

type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Provider        string        `mapstructure:"provider"`
	MinimumFitScore float64       `mapstructure:"minimum-fit-score"`
	Criteria        string        `mapstructure:"criteria"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type statusProvider interface {
	Status() Status
}

// Default returns every filter in the order they should run. The AI step
// goes last so the model only sees postings that survived the cheap checks.
func Default() []Filter {
	return []Filter{
		NewExcludedCompanies(),
		NewSources(),
		NewLocations(),
		NewRedFlags(),
		NewExcludeFile(),
		NewMaxAge(),
		NewAIFit(),
	}
}

// DisableByName marks a filter as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates every enabled step and then applies them in order. It returns
// the surviving postings and the AI assessments collected on the way, keyed
// by job id.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, v *jobs.Jobs) (*jobs.Jobs, map[string]*ai.FitAssessment, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	log := deps.logger()

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	assessments := make(map[string]*ai.FitAssessment)
	for _, step := range steps {
		if !step.IsEnabled() {
			log.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, v)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		log.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		v = next

		if collector, ok := step.(interface {
			Assessments() map[string]*ai.FitAssessment
		}); ok {
			for id, assessment := range collector.Assessments() {
				assessments[id] = assessment
			}
		}
	}

	return v, assessments, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// toggle carries the enabled flag shared by every filter.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

func (t *toggle) status(name string, details map[string]string) Status {
	if len(details) == 0 {
		details = nil
	}
	return Status{Name: name, Enabled: !t.disabled, Reason: t.reason, Details: details}
}

func unchanged(v *jobs.Jobs) Step {
	return Step{Initial: v.Len(), Dropped: 0, Left: v.Len()}
}
