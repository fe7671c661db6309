// Package recommend finds postings that resemble a reference posting or that
// suit a résumé better than it does.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/joblo/internal/jobs"
	"github.com/spigell/joblo/internal/resume"
	"github.com/spigell/joblo/internal/scoring"
	"github.com/spigell/joblo/internal/textsim"
)

const DefaultCount = 5

// ProfileExtractor parses a résumé file.
type ProfileExtractor interface {
	ExtractFile(path string) (*resume.Profile, error)
}

type SimilarJob struct {
	Job             *jobs.Job `json:"job"`
	SimilarityScore float64   `json:"similarity_score"`
	Reasoning       string    `json:"reasoning"`
}

type BetterMatch struct {
	Job         *jobs.Job           `json:"job"`
	Match       scoring.MatchResult `json:"score_details"`
	Improvement float64             `json:"improvement"`
}

type Recommendations struct {
	SimilarJobs   []SimilarJob  `json:"similar_jobs"`
	BetterMatches []BetterMatch `json:"better_matches"`
}

type TopMatch struct {
	Job   *jobs.Job           `json:"job"`
	Match scoring.MatchResult `json:"score_details"`
}

type Recommender struct {
	source     jobs.Source
	scorer     *scoring.Scorer
	extractor  ProfileExtractor
	vectorizer *textsim.Vectorizer
	logger     *zap.Logger
}

func New(source jobs.Source, scorer *scoring.Scorer, extractor ProfileExtractor, logger *zap.Logger) *Recommender {
	if scorer == nil {
		scorer = scoring.NewScorer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recommender{
		source:     source,
		scorer:     scorer,
		extractor:  extractor,
		vectorizer: textsim.NewVectorizer(),
		logger:     logger,
	}
}

// SimilarJobs ranks every other posting by text similarity to the reference.
// A reference id that does not resolve fails with jobs.ErrNotFound.
func (r *Recommender) SimilarJobs(ctx context.Context, refID string, n int) ([]SimilarJob, error) {
	if n <= 0 {
		n = DefaultCount
	}

	ref, candidates, err := r.load(ctx, refID)
	if err != nil {
		return nil, err
	}
	if candidates.Len() == 0 {
		return []SimilarJob{}, nil
	}

	texts := make([]string, 0, candidates.Len())
	for _, job := range candidates.Items {
		texts = append(texts, JobText(job))
	}

	scores, err := r.vectorizer.Rank(JobText(ref), texts)
	if err != nil {
		r.logger.Debug("job similarity unavailable", zap.String("job_id", ref.ID), zap.Error(err))
		scores = make([]float64, len(texts))
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if len(order) > n {
		order = order[:n]
	}

	results := make([]SimilarJob, 0, len(order))
	for _, idx := range order {
		job := candidates.Items[idx]
		results = append(results, SimilarJob{
			Job:             job,
			SimilarityScore: round(scores[idx], 3),
			Reasoning:       similarityReasoning(ref, job, scores[idx]),
		})
	}

	r.logger.Debug("similar jobs ranked",
		zap.String("job_id", ref.ID),
		zap.Int("candidates", candidates.Len()),
		zap.Int("returned", len(results)),
	)

	return results, nil
}

// BetterMatches returns postings that score strictly higher for the profile
// than the reference posting, best first.
func (r *Recommender) BetterMatches(ctx context.Context, refID string, profile *resume.Profile, n int) ([]BetterMatch, error) {
	if n <= 0 {
		n = DefaultCount
	}

	ref, candidates, err := r.load(ctx, refID)
	if err != nil {
		return nil, err
	}

	baseline := r.scorer.Score(profile, ref)

	results := []BetterMatch{}
	for _, job := range candidates.Items {
		res := r.scorer.Score(profile, job)
		if res.Score <= baseline.Score {
			continue
		}
		results = append(results, BetterMatch{
			Job:         job,
			Match:       res,
			Improvement: round(res.Score-baseline.Score, 2),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Match.Score != results[j].Match.Score {
			return results[i].Match.Score > results[j].Match.Score
		}
		return results[i].Job.ID < results[j].Job.ID
	})
	if len(results) > n {
		results = results[:n]
	}

	r.logger.Debug("better matches found",
		zap.String("job_id", ref.ID),
		zap.Float64("reference_score", baseline.Score),
		zap.Int("returned", len(results)),
	)

	return results, nil
}

// RecommendForProfile always looks up similar postings. Better matches are
// computed only when a résumé path is given.
func (r *Recommender) RecommendForProfile(ctx context.Context, refID, resumePath string) (*Recommendations, error) {
	similar, err := r.SimilarJobs(ctx, refID, DefaultCount)
	if err != nil {
		return nil, err
	}

	recs := &Recommendations{SimilarJobs: similar, BetterMatches: []BetterMatch{}}
	if strings.TrimSpace(resumePath) == "" {
		return recs, nil
	}

	profile, err := r.extract(resumePath)
	if err != nil {
		return nil, err
	}

	better, err := r.BetterMatches(ctx, refID, profile, DefaultCount)
	if err != nil {
		return nil, err
	}
	recs.BetterMatches = better

	return recs, nil
}

// TopMatches parses the résumé and returns the best scoring postings.
func (r *Recommender) TopMatches(ctx context.Context, resumePath string, limit int) ([]TopMatch, error) {
	profile, err := r.extract(resumePath)
	if err != nil {
		return nil, err
	}
	return r.TopMatchesForProfile(ctx, profile, limit)
}

// TopMatchesForProfile scores the whole pool for an already parsed profile.
func (r *Recommender) TopMatchesForProfile(ctx context.Context, profile *resume.Profile, limit int) ([]TopMatch, error) {
	if limit <= 0 {
		limit = DefaultCount
	}

	all, err := r.source.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading jobs: %w", err)
	}
	if all.Len() == 0 {
		r.logger.Warn("no jobs available for matching")
		return []TopMatch{}, nil
	}

	scored := r.scorer.ScoreAll(profile, all.Items, limit)

	results := make([]TopMatch, 0, len(scored))
	for _, res := range scored {
		job := all.FindByID(res.JobID)
		if job == nil {
			continue
		}
		results = append(results, TopMatch{Job: job, Match: res})
	}
	return results, nil
}

func (r *Recommender) load(ctx context.Context, refID string) (*jobs.Job, *jobs.Jobs, error) {
	ref, err := r.source.Get(ctx, refID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			r.logger.Debug("reference job not found", zap.String("job_id", refID))
		}
		return nil, nil, err
	}

	all, err := r.source.All(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading jobs: %w", err)
	}

	return ref, all.Without(ref.ID), nil
}

func (r *Recommender) extract(path string) (*resume.Profile, error) {
	if r.extractor == nil {
		return nil, errors.New("no resume extractor configured")
	}
	profile, err := r.extractor.ExtractFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing resume %q: %w", path, err)
	}
	return profile, nil
}

// JobText is the document a posting contributes to job-to-job similarity.
func JobText(job *jobs.Job) string {
	parts := []string{job.Title, job.Company, job.Location, job.Description, strings.Join(job.Skills, " "), job.Experience}
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
