package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/joblo/internal/jobs"
)

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes postings listed in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = strings.TrimSpace(cfg.ExcludeFile)
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, v *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := v.Len()
	if f.path == "" {
		return v, unchanged(v), nil
	}

	excluded, err := jobs.GetExcludedJobsFromFile(f.path)
	if err != nil {
		return v, Step{}, fmt.Errorf("getting excluded jobs from file: %w", err)
	}

	removed := v.Exclude(jobs.JobIDField, excluded.JobIDs())
	if len(removed) > 0 {
		deps.logger().Info("excluding jobs based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_jobs", removed),
			zap.Int("jobs_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(removed), Left: v.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return f.status(f.Name(), details)
}
