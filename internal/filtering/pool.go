package filtering

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/joblo/internal/jobs"
)

type companiesFilter struct {
	toggle
	companies []string
}

// NewExcludedCompanies drops postings from the companies listed under
// exclude-companies.
func NewExcludedCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = append([]string(nil), cfg.ExcludeCompanies...)
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, v *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := v.Len()
	if len(f.companies) == 0 {
		return v, unchanged(v), nil
	}

	excluded := v.Exclude(jobs.JobCompanyField, f.companies)
	if len(excluded) > 0 {
		deps.logger().Info("excluding jobs by company",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return f.status(f.Name(), details)
}

type sourcesFilter struct {
	toggle
	sources map[jobs.Platform]struct{}
}

// NewSources keeps postings scraped from the listed platforms only.
func NewSources() Filter {
	return &sourcesFilter{}
}

func (f *sourcesFilter) Name() string { return "sources" }

func (f *sourcesFilter) Validate(cfg *Config) error {
	f.sources = nil
	for _, s := range cfg.Sources {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if f.sources == nil {
			f.sources = make(map[jobs.Platform]struct{})
		}
		f.sources[jobs.ParsePlatform(s)] = struct{}{}
	}
	return nil
}

func (f *sourcesFilter) Apply(_ context.Context, deps Deps, v *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := v.Len()
	if len(f.sources) == 0 {
		return v, unchanged(v), nil
	}

	dropped := v.Keep(func(job *jobs.Job) bool {
		_, ok := f.sources[jobs.ParsePlatform(string(job.Source))]
		return ok
	})
	if len(dropped) > 0 {
		deps.logger().Debug("dropping jobs from other sources", zap.Strings("dropped_jobs", dropped))
	}

	return v, Step{Initial: initial, Dropped: len(dropped), Left: v.Len()}, nil
}

func (f *sourcesFilter) Status() Status {
	names := make([]string, 0, len(f.sources))
	for p := range f.sources {
		names = append(names, string(p))
	}
	sort.Strings(names)
	details := map[string]string{}
	if len(names) > 0 {
		details["sources"] = strings.Join(names, ",")
	}
	return f.status(f.Name(), details)
}

type locationsFilter struct {
	toggle
	locations []string
}

// NewLocations keeps postings whose location contains one of the configured
// places, the same rule the scorer uses. Remote postings always pass.
func NewLocations() Filter {
	return &locationsFilter{}
}

func (f *locationsFilter) Name() string { return "locations" }

func (f *locationsFilter) Validate(cfg *Config) error {
	f.locations = f.locations[:0]
	for _, loc := range cfg.Locations {
		if loc = strings.ToLower(strings.TrimSpace(loc)); loc != "" {
			f.locations = append(f.locations, loc)
		}
	}
	return nil
}

func (f *locationsFilter) Apply(_ context.Context, deps Deps, v *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := v.Len()
	if len(f.locations) == 0 {
		return v, unchanged(v), nil
	}

	dropped := v.Keep(func(job *jobs.Job) bool {
		location := strings.ToLower(job.Location)
		if strings.Contains(location, "remote") {
			return true
		}
		for _, want := range f.locations {
			if strings.Contains(location, want) {
				return true
			}
		}
		return false
	})
	if len(dropped) > 0 {
		deps.logger().Debug("dropping jobs outside configured locations", zap.Strings("dropped_jobs", dropped))
	}

	return v, Step{Initial: initial, Dropped: len(dropped), Left: v.Len()}, nil
}

func (f *locationsFilter) Status() Status {
	details := map[string]string{}
	if len(f.locations) > 0 {
		details["locations"] = strings.Join(f.locations, ",")
	}
	return f.status(f.Name(), details)
}

type redFlagsFilter struct {
	toggle
	flags []string
}

// NewRedFlags drops postings whose title, company or description mention a
// configured red flag phrase.
func NewRedFlags() Filter {
	return &redFlagsFilter{}
}

func (f *redFlagsFilter) Name() string { return "red_flags" }

func (f *redFlagsFilter) Validate(cfg *Config) error {
	f.flags = f.flags[:0]
	for _, flag := range cfg.RedFlags {
		if flag = strings.ToLower(strings.TrimSpace(flag)); flag != "" {
			f.flags = append(f.flags, flag)
		}
	}
	return nil
}

func (f *redFlagsFilter) Apply(_ context.Context, deps Deps, v *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := v.Len()
	if len(f.flags) == 0 {
		return v, unchanged(v), nil
	}

	log := deps.logger()
	dropped := v.Keep(func(job *jobs.Job) bool {
		flag, found := redFlag(job, f.flags)
		if found {
			log.Debug("red flag found", zap.String("job_id", job.ID), zap.String("flag", flag))
		}
		return !found
	})

	return v, Step{Initial: initial, Dropped: len(dropped), Left: v.Len()}, nil
}

func (f *redFlagsFilter) Status() Status {
	return f.status(f.Name(), map[string]string{"flags": strconv.Itoa(len(f.flags))})
}

func redFlag(job *jobs.Job, flags []string) (string, bool) {
	text := strings.ToLower(job.Title + " " + job.Company + " " + job.Description)
	for _, flag := range flags {
		if strings.Contains(text, flag) {
			return flag, true
		}
	}
	return "", false
}

type maxAgeFilter struct {
	toggle
	maxAge time.Duration
}

// NewMaxAge drops postings older than max-age-days. Postings without a date
// are kept.
func NewMaxAge() Filter {
	return &maxAgeFilter{}
}

func (f *maxAgeFilter) Name() string { return "max_age" }

func (f *maxAgeFilter) Validate(cfg *Config) error {
	f.maxAge = 0
	if cfg.MaxAgeDays > 0 {
		f.maxAge = time.Duration(cfg.MaxAgeDays) * 24 * time.Hour
	}
	return nil
}

func (f *maxAgeFilter) Apply(_ context.Context, deps Deps, v *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := v.Len()
	if f.maxAge == 0 {
		return v, unchanged(v), nil
	}

	cutoff := deps.now().Add(-f.maxAge)
	dropped := v.Keep(func(job *jobs.Job) bool {
		return job.PostedDate == nil || !job.PostedDate.Before(cutoff)
	})
	if len(dropped) > 0 {
		deps.logger().Debug("dropping stale jobs",
			zap.Time("cutoff", cutoff),
			zap.Strings("dropped_jobs", dropped),
		)
	}

	return v, Step{Initial: initial, Dropped: len(dropped), Left: v.Len()}, nil
}

func (f *maxAgeFilter) Status() Status {
	details := map[string]string{}
	if f.maxAge > 0 {
		details["max_age"] = f.maxAge.String()
	}
	return f.status(f.Name(), details)
}
