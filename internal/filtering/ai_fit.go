package filtering

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/joblo/internal/ai"
	"github.com/spigell/joblo/internal/jobs"
	"github.com/spigell/joblo/internal/logger"
)

const (
	AIFitName = "ai_fit"

	excludeReasonPrefix = "ai: "
)

type aiFitFilter struct {
	toggle
	config      *AIConfig
	excludeFile string
	assessments map[string]*ai.FitAssessment
}

// NewAIFit creates the step that asks the configured model for a second
// opinion. Validation disables it unless the ai section turns it on.
func NewAIFit() Filter {
	return &aiFitFilter{}
}

func (f *aiFitFilter) Name() string { return AIFitName }

func (f *aiFitFilter) Validate(cfg *Config) error {
	f.config = cfg.AI
	f.excludeFile = strings.TrimSpace(cfg.ExcludeFile)

	if cfg.AI == nil || !cfg.AI.Enabled {
		f.Disable("ai is not enabled")
		return nil
	}
	provider := strings.TrimSpace(cfg.AI.Provider)
	if provider != "" && provider != "gemini" {
		return fmt.Errorf("unsupported ai provider %q", provider)
	}
	if cfg.AI.Gemini == nil {
		return errors.New("gemini configuration is required when ai filter is enabled")
	}
	if strings.TrimSpace(cfg.AI.Gemini.Model) == "" {
		return errors.New("gemini model is required when ai filter is enabled")
	}
	return nil
}

func (f *aiFitFilter) Apply(ctx context.Context, deps Deps, v *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := v.Len()
	log := deps.logger()

	if !f.IsEnabled() {
		return v, unchanged(v), nil
	}
	if deps.Matcher == nil {
		log.Info("ai matcher is not configured; skipping ai_fit filter")
		return v, unchanged(v), nil
	}
	if deps.Profile == nil {
		return v, Step{}, errors.New("profile is required for AI evaluation")
	}

	f.assessments = make(map[string]*ai.FitAssessment, initial)
	var rejected []*jobs.Job

	dropped := v.Keep(func(job *jobs.Job) bool {
		fields := logger.JobFields(job.ID, job.Company, string(job.Source))

		assessment, err := deps.Matcher.Evaluate(ctx, deps.Profile, job)
		if err != nil {
			log.Warn("AI evaluation failed", append(fields, zap.Error(err))...)
			return true
		}

		if !assessment.Fit {
			log.Info("job rejected by AI provider", append(fields,
				zap.Float64("ai_score", assessment.Score),
				zap.String("reason", assessment.Reason),
			)...)
			rejected = append(rejected, job)
			f.assessments[job.ID] = assessment
			return false
		}

		log.Debug("job approved by AI", append(fields, zap.Float64("ai_score", assessment.Score))...)
		f.assessments[job.ID] = assessment
		return true
	})

	if err := f.appendToExcludeFile(rejected); err != nil {
		log.Warn("failed to append rejected jobs to exclude file", zap.String("path", f.excludeFile), zap.Error(err))
	}

	log.Info("AI filtering completed",
		zap.Int("initial_jobs", initial),
		zap.Int("approved_jobs", v.Len()),
	)

	return v, Step{Initial: initial, Dropped: len(dropped), Left: v.Len()}, nil
}

// Assessments returns the verdicts of the last run, rejected postings included.
func (f *aiFitFilter) Assessments() map[string]*ai.FitAssessment {
	out := make(map[string]*ai.FitAssessment, len(f.assessments))
	maps.Copy(out, f.assessments)
	return out
}

func (f *aiFitFilter) appendToExcludeFile(rejected []*jobs.Job) error {
	if f.excludeFile == "" || len(rejected) == 0 {
		return nil
	}

	excluded, err := jobs.GetExcludedJobsFromFile(f.excludeFile)
	if err != nil {
		return fmt.Errorf("load excluded jobs: %w", err)
	}

	for _, job := range rejected {
		reason := excludeReasonPrefix + "not a fit"
		if a := f.assessments[job.ID]; a != nil && a.Reason != "" {
			reason = excludeReasonPrefix + a.Reason
		}
		excluded.Append((&jobs.Jobs{Items: []*jobs.Job{job}}).ToExcluded(reason))
	}

	if err := excluded.ToFile(f.excludeFile); err != nil {
		return fmt.Errorf("write excluded jobs: %w", err)
	}
	return nil
}

func (f *aiFitFilter) Status() Status {
	details := map[string]string{}
	if f.config != nil {
		if f.config.Provider != "" {
			details["provider"] = f.config.Provider
		}
		if f.config.MinimumFitScore > 0 {
			details["minimum_fit_score"] = strconv.FormatFloat(f.config.MinimumFitScore, 'f', 2, 64)
		}
		if f.config.Gemini != nil && f.config.Gemini.Model != "" {
			details["model"] = f.config.Gemini.Model
		}
	}
	return f.status(f.Name(), details)
}
