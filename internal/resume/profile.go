package resume

import (
	"fmt"
	"strings"
)

// Profile is the structured view of a résumé.
type Profile struct {
	ID                 string      `json:"id,omitempty"`
	Name               string      `json:"name,omitempty"`
	Email              string      `json:"email,omitempty"`
	Phone              string      `json:"phone,omitempty"`
	Skills             []string    `json:"skills"`
	ExperienceYears    *float64    `json:"experience_years,omitempty"`
	Education          []string    `json:"education,omitempty"`
	WorkHistory        []WorkEntry `json:"work_history,omitempty"`
	PreferredLocations []string    `json:"preferred_locations,omitempty"`
	PreferredJobTypes  []string    `json:"preferred_job_types,omitempty"`
	RawText            string      `json:"raw_text,omitempty"`
}

type WorkEntry struct {
	Company string `json:"company"`
}

// Years returns the inferred experience or 0 when it is unknown.
func (p *Profile) Years() float64 {
	if p == nil || p.ExperienceYears == nil {
		return 0
	}
	return *p.ExperienceYears
}

// HasSkill reports whether the profile lists skill, ignoring case.
func (p *Profile) HasSkill(skill string) bool {
	skill = strings.ToLower(strings.TrimSpace(skill))
	if skill == "" {
		return false
	}
	for _, s := range p.Skills {
		if strings.ToLower(strings.TrimSpace(s)) == skill {
			return true
		}
	}
	return false
}

// Summary renders the profile for prompts and terminal output.
func (p *Profile) Summary() string {
	var b strings.Builder

	if p.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", p.Name)
	}
	if p.ExperienceYears != nil {
		fmt.Fprintf(&b, "Experience: %.1f years\n", *p.ExperienceYears)
	}
	if len(p.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(p.Skills, ", "))
	}
	if len(p.PreferredLocations) > 0 {
		fmt.Fprintf(&b, "Locations: %s\n", strings.Join(p.PreferredLocations, ", "))
	}
	if len(p.Education) > 0 {
		fmt.Fprintf(&b, "Education: %s\n", strings.Join(p.Education, "; "))
	}
	if len(p.WorkHistory) > 0 {
		companies := make([]string, 0, len(p.WorkHistory))
		for _, w := range p.WorkHistory {
			companies = append(companies, w.Company)
		}
		fmt.Fprintf(&b, "Companies: %s\n", strings.Join(companies, ", "))
	}

	return strings.TrimSpace(b.String())
}
