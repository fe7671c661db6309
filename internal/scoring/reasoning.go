package scoring

import (
	"fmt"
	"strings"

	"github.com/spigell/joblo/internal/jobs"
)

const (
	reasonSkillsListed  = 5
	reasonMissingListed = 3

	experienceAligned    = 15.0
	experienceAcceptable = 10.0

	strongSimilarity   = 0.5
	moderateSimilarity = 0.3
)

// reasoning explains a match. experience is on the 0..20 scale and
// similarity is the raw cosine value, so the thresholds do not depend on
// configured weights.
func reasoning(matching, missing []string, experience float64, locationMatch bool, similarity float64, job *jobs.Job) string {
	var reasons []string

	if len(matching) > 0 {
		reasons = append(reasons, fmt.Sprintf("Strong skill match with %d relevant skills: %s",
			len(matching), strings.Join(head(matching, reasonSkillsListed), ", ")))
	} else {
		reasons = append(reasons, "Limited skill overlap with job requirements")
	}

	if len(missing) > 0 {
		reasons = append(reasons, "Missing skills: "+strings.Join(head(missing, reasonMissingListed), ", "))
	}

	switch {
	case experience >= experienceAligned:
		reasons = append(reasons, "Experience level aligns well with requirements")
	case experience >= experienceAcceptable:
		reasons = append(reasons, "Experience level is acceptable for this role")
	default:
		reasons = append(reasons, "Experience level may not fully meet requirements")
	}

	if locationMatch {
		location := job.Location
		if strings.TrimSpace(location) == "" {
			location = "Not specified"
		}
		reasons = append(reasons, fmt.Sprintf("Location preference matches (%s)", location))
	} else {
		reasons = append(reasons, "Location may require relocation or remote work")
	}

	switch {
	case similarity > strongSimilarity:
		reasons = append(reasons, "Strong overall profile match based on job description")
	case similarity > moderateSimilarity:
		reasons = append(reasons, "Moderate profile match with job requirements")
	}

	return strings.Join(reasons, " | ")
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
