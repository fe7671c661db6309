package recommend

import (
	"fmt"
	"strings"

	"github.com/spigell/joblo/internal/jobs"
	"github.com/spigell/joblo/internal/textsim"
)

const (
	sharedSkillsListed = 3

	veryHighSimilarity = 0.7
	highSimilarity     = 0.5

	fallbackReason = "Similar based on job content"
)

func similarityReasoning(ref, job *jobs.Job, similarity float64) string {
	var reasons []string

	refTitle := strings.ToLower(strings.TrimSpace(ref.Title))
	jobTitle := strings.ToLower(strings.TrimSpace(job.Title))
	switch {
	case refTitle != "" && refTitle == jobTitle:
		reasons = append(reasons, "Same job title")
	case sharesTitleWord(refTitle, jobTitle):
		reasons = append(reasons, "Similar job title")
	}

	if common := sharedSkills(ref.Skills, job.Skills); len(common) > 0 {
		if len(common) > sharedSkillsListed {
			common = common[:sharedSkillsListed]
		}
		reasons = append(reasons, fmt.Sprintf("Common skills: %s", strings.Join(common, ", ")))
	}

	if loc := strings.TrimSpace(ref.Location); loc != "" && strings.EqualFold(loc, strings.TrimSpace(job.Location)) {
		reasons = append(reasons, "Same location")
	}

	if exp := strings.TrimSpace(ref.Experience); exp != "" && exp == strings.TrimSpace(job.Experience) {
		reasons = append(reasons, "Same experience level")
	}

	switch {
	case similarity > veryHighSimilarity:
		reasons = append(reasons, "Very high content similarity")
	case similarity > highSimilarity:
		reasons = append(reasons, "High content similarity")
	default:
		reasons = append(reasons, "Moderate content similarity")
	}

	if len(reasons) == 0 {
		return fallbackReason
	}
	return strings.Join(reasons, " | ")
}

func sharesTitleWord(refTitle, jobTitle string) bool {
	if jobTitle == "" {
		return false
	}
	for _, word := range strings.Fields(refTitle) {
		if textsim.ContainsWord(jobTitle, word) {
			return true
		}
	}
	return false
}

// sharedSkills lists the reference skills the other posting also asks for,
// in reference order and lowercased.
func sharedSkills(ref, other []string) []string {
	have := make(map[string]struct{}, len(other))
	for _, s := range other {
		have[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	var common []string
	seen := make(map[string]struct{}, len(ref))
	for _, s := range ref {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := have[key]; ok {
			common = append(common, key)
		}
	}
	return common
}
