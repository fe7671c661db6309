package filtering

import (
	"context"
	"sync"

	"github.com/spigell/joblo/internal/jobs"
)

// Source narrows another jobs.Source with a filter pipeline. Lookups by id go
// straight through so a filtered-out posting can still serve as a reference.
// Filters keep per-run state, so runs are serialised.
type Source struct {
	mu    sync.Mutex
	inner jobs.Source
	cfg   *Config
	deps  Deps
	steps []Filter
}

func NewSource(inner jobs.Source, cfg *Config, deps Deps, steps []Filter) *Source {
	return &Source{inner: inner, cfg: cfg, deps: deps, steps: steps}
}

func (s *Source) Get(ctx context.Context, id string) (*jobs.Job, error) {
	return s.inner.Get(ctx, id)
}

func (s *Source) All(ctx context.Context) (*jobs.Jobs, error) {
	all, err := s.inner.All(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filtered, _, err := Run(ctx, s.cfg, s.deps, s.steps, all)
	if err != nil {
		return nil, err
	}
	return filtered, nil
}

// Steps exposes the pipeline for status reporting.
func (s *Source) Steps() []Filter { return s.steps }
