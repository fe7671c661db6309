package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/joblo/internal/ai"
	"github.com/spigell/joblo/internal/jobs"
	"github.com/spigell/joblo/internal/resume"
	"github.com/spigell/joblo/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	resumeExcerptLength = 4000
	noCriteria          = "none"
)

type Matcher struct {
	generator contentGenerator
	minScore  float64
	criteria  string
	logger    *zap.Logger
	maxLogLen int
}

func NewMatcher(generator contentGenerator, minScore float64, maxLogLength int, logger *zap.Logger) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Matcher{
		generator: generator,
		minScore:  minScore,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// WithCriteria adds free-form candidate preferences to the instructions.
func (m *Matcher) WithCriteria(criteria string) *Matcher {
	m.criteria = strings.Join(strings.Fields(criteria), " ")
	return m
}

type evaluationPayload struct {
	Profile profileView `json:"profile"`
	Job     *jobs.Job   `json:"job"`
}

type profileView struct {
	*resume.Profile
	// RawText shadows the profile's full text; only the excerpt goes to the model.
	RawText       string `json:"raw_text,omitempty"`
	ResumeExcerpt string `json:"resume_excerpt,omitempty"`
}

func (m *Matcher) Evaluate(ctx context.Context, profile *resume.Profile, job *jobs.Job) (*ai.FitAssessment, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if job == nil {
		return nil, fmt.Errorf("job is required")
	}

	payload, err := json.MarshalIndent(evaluationPayload{
		Profile: profileView{Profile: profile, ResumeExcerpt: excerpt(profile.RawText, resumeExcerptLength)},
		Job:     job,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal evaluation payload: %w", err)
	}

	system := buildInstructions(m.criteria)
	message := string(payload)

	m.logger.Debug("gemini generate content request",
		zap.String("job_id", job.ID),
		zap.Int("message_length", utf8.RuneCountInString(message)),
		zap.String("message_preview", utils.TruncateForLog(message, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, system, message)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini generate content response",
		zap.String("job_id", job.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if m.minScore > 0 && assessment.Score < m.minScore {
		m.logger.Debug("set fit to false by score threshold",
			zap.String("job_id", job.ID),
			zap.Float64("score", assessment.Score),
			zap.Float64("threshold", m.minScore),
		)
		assessment.Fit = false
	}

	assessment.Raw = raw
	return assessment, nil
}

func buildInstructions(criteria string) string {
	if strings.TrimSpace(criteria) == "" {
		criteria = noCriteria
	}
	return strings.ReplaceAll(promptTemplate, "{{CRITERIA}}", criteria)
}

func excerpt(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func parseResponse(raw string) (*ai.FitAssessment, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	switch {
	case math.IsNaN(score) || score < 0:
		score = 0
	case score > 1 && score <= 100:
		// some answers use a percentage despite the instructions
		score /= 100
	case score > 100:
		score = 1
	}

	return &ai.FitAssessment{
		Fit:     coerceBool(data["fit"]),
		Score:   score,
		Reason:  coerceString(data["reason"]),
		Message: coerceString(data["message"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		raw = raw[start : end+1]
	}
	return strings.TrimSpace(raw)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
