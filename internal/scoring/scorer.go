// Package scoring rates how well a résumé profile fits a job posting.
package scoring

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/joblo/internal/jobs"
	"github.com/spigell/joblo/internal/resume"
	"github.com/spigell/joblo/internal/textsim"
)

const (
	maxMissingSkills = 5
	maxScore         = 100.0
)

var remoteTerms = []string{"remote", "work from home", "wfh"}

// Weights are the maximum points of every sub-score.
type Weights struct {
	Skill      float64 `mapstructure:"skill" json:"skill"`
	Experience float64 `mapstructure:"experience" json:"experience"`
	Location   float64 `mapstructure:"location" json:"location"`
	Similarity float64 `mapstructure:"similarity" json:"similarity"`
}

func DefaultWeights() Weights {
	return Weights{Skill: 40, Experience: 20, Location: 10, Similarity: 30}
}

// Breakdown holds the weighted sub-scores of a match. RawSimilarity is the
// unweighted cosine similarity in [0,1].
type Breakdown struct {
	Skill         float64 `json:"skill"`
	Experience    float64 `json:"experience"`
	Location      float64 `json:"location"`
	Similarity    float64 `json:"similarity"`
	RawSimilarity float64 `json:"raw_similarity"`
}

type MatchResult struct {
	JobID           string    `json:"job_id"`
	ProfileID       string    `json:"profile_id,omitempty"`
	Score           float64   `json:"score"`
	MatchingSkills  []string  `json:"matching_skills"`
	MissingSkills   []string  `json:"missing_skills"`
	ExperienceMatch bool      `json:"experience_match"`
	LocationMatch   bool      `json:"location_match"`
	Reasoning       string    `json:"reasoning"`
	Breakdown       Breakdown `json:"breakdown"`
}

type Option func(*Scorer)

func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

func WithVectorizer(v *textsim.Vectorizer) Option {
	return func(s *Scorer) {
		if v != nil {
			s.vectorizer = v
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Scorer is safe for concurrent use; it keeps no state between calls.
type Scorer struct {
	weights    Weights
	vectorizer *textsim.Vectorizer
	logger     *zap.Logger
}

func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		weights:    DefaultWeights(),
		vectorizer: textsim.NewVectorizer(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score rates one job against the profile. Missing data on either side lowers
// the score instead of failing.
func (s *Scorer) Score(profile *resume.Profile, job *jobs.Job) MatchResult {
	if profile == nil {
		profile = &resume.Profile{}
	}

	matching, missing := splitSkills(profile, job.Skills)
	required := len(matching) + len(missing)

	var b Breakdown
	b.Skill = float64(len(matching)) / math.Max(float64(required), 1) * s.weights.Skill

	experience := experiencePoints(ParseRequirement(job.Experience), profile.Years())
	b.Experience = experience / experienceFull * s.weights.Experience

	locationMatch := matchesLocation(profile.PreferredLocations, job.Location)
	if locationMatch {
		b.Location = s.weights.Location
	}

	b.RawSimilarity = s.similarity(profile, job)
	b.Similarity = b.RawSimilarity * s.weights.Similarity

	total := b.Skill + b.Experience + b.Location + b.Similarity
	total = math.Min(maxScore, math.Max(0, total))

	if len(missing) > maxMissingSkills {
		missing = missing[:maxMissingSkills]
	}

	return MatchResult{
		JobID:           job.ID,
		ProfileID:       profile.ID,
		Score:           round(total, 2),
		MatchingSkills:  matching,
		MissingSkills:   missing,
		ExperienceMatch: experience > experienceMatchMark,
		LocationMatch:   locationMatch,
		Reasoning:       reasoning(matching, missing, experience, locationMatch, b.RawSimilarity, job),
		Breakdown:       b,
	}
}

// ScoreAll scores every job and returns the best topK, highest score first.
// Equal scores are ordered by job id. topK <= 0 returns every result.
func (s *Scorer) ScoreAll(profile *resume.Profile, items []*jobs.Job, topK int) []MatchResult {
	results := make([]MatchResult, 0, len(items))
	for _, job := range items {
		results = append(results, s.Score(profile, job))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].JobID < results[j].JobID
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}

	s.logger.Debug("jobs scored",
		zap.Int("candidates", len(items)),
		zap.Int("returned", len(results)),
	)

	return results
}

func (s *Scorer) similarity(profile *resume.Profile, job *jobs.Job) float64 {
	sim, err := s.vectorizer.Pair(profile.RawText, JobText(job))
	if err != nil {
		s.logger.Debug("text similarity unavailable",
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
		return 0
	}
	return sim
}

// JobText is the document a posting contributes to résumé similarity.
func JobText(job *jobs.Job) string {
	return strings.Join([]string{job.Title, job.Description, strings.Join(job.Skills, " ")}, " ")
}

// splitSkills partitions the job skills, deduplicated ignoring case and kept
// in posting order, into those the profile has and those it lacks.
func splitSkills(profile *resume.Profile, jobSkills []string) (matching, missing []string) {
	matching = []string{}
	missing = []string{}
	seen := make(map[string]struct{}, len(jobSkills))
	for _, skill := range jobSkills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if profile.HasSkill(skill) {
			matching = append(matching, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	return matching, missing
}

// matchesLocation accepts remote postings and postings whose location
// contains one of the preferred places.
func matchesLocation(preferred []string, location string) bool {
	location = strings.ToLower(location)
	for _, term := range remoteTerms {
		if strings.Contains(location, term) {
			return true
		}
	}

	for _, place := range preferred {
		place = strings.ToLower(strings.TrimSpace(place))
		if place != "" && strings.Contains(location, place) {
			return true
		}
	}
	return false
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
