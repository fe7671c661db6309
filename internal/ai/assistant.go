// Package ai defines the optional LLM second opinion on résumé to job matches.
package ai

import (
	"context"

	"github.com/spigell/joblo/internal/jobs"
	"github.com/spigell/joblo/internal/resume"
)

type FitAssessment struct {
	Fit     bool    `json:"fit"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason,omitempty"`
	Message string  `json:"message,omitempty"`
	Raw     string  `json:"-"`
}

// Matcher asks a language model whether a posting suits a profile.
type Matcher interface {
	Evaluate(ctx context.Context, profile *resume.Profile, job *jobs.Job) (*FitAssessment, error)
}
