package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	JobIDField      = "ID"
	JobCompanyField = "Company"
	JobSourceField  = "Source"
)

// Platform identifies the job board a record was scraped from.
type Platform string

const (
	PlatformNaukri   Platform = "naukri"
	PlatformLinkedIn Platform = "linkedin"
	PlatformOther    Platform = "other"
)

// ParsePlatform maps free text onto a known platform, falling back to PlatformOther.
func ParsePlatform(s string) Platform {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformNaukri:
		return PlatformNaukri
	case PlatformLinkedIn:
		return PlatformLinkedIn
	default:
		return PlatformOther
	}
}

type Jobs struct {
	Items []*Job
}

// Job is a single scraped posting.
type Job struct {
	ID          string     `json:"id,omitempty" mapstructure:"id"`
	Title       string     `json:"title" mapstructure:"title"`
	Company     string     `json:"company" mapstructure:"company"`
	Location    string     `json:"location" mapstructure:"location"`
	Experience  string     `json:"experience" mapstructure:"experience"`
	Skills      []string   `json:"skills" mapstructure:"skills"`
	Description string     `json:"description" mapstructure:"description"`
	PostedDate  *time.Time `json:"posted_date,omitempty" mapstructure:"posted_date"`
	URL         string     `json:"url" mapstructure:"url"`
	Source      Platform   `json:"source" mapstructure:"source"`
	Salary      string     `json:"salary,omitempty" mapstructure:"salary"`
	JobType     string     `json:"job_type,omitempty" mapstructure:"job_type"`
}

func (j *Job) GetStringField(name string) string {
	switch name {
	case JobIDField:
		return j.ID
	case JobCompanyField:
		return j.Company
	case JobSourceField:
		return string(j.Source)
	default:
		return ""
	}
}

// Label is a one-line description used in prompts and logs.
func (j *Job) Label() string {
	return fmt.Sprintf("%s %s / %s / %s", j.ID, j.Title, j.Company, j.Location)
}

func (v *Jobs) Len() int {
	return len(v.Items)
}

func (v *Jobs) FindByID(id string) *Job {
	for _, job := range v.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (v *Jobs) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, job := range v.Items {
		ids = append(ids, job.ID)
	}
	return ids
}

// Without returns a new collection that lacks the job with the given id.
func (v *Jobs) Without(id string) *Jobs {
	out := &Jobs{Items: make([]*Job, 0, len(v.Items))}
	for _, job := range v.Items {
		if job.ID != id {
			out.Items = append(out.Items, job)
		}
	}
	return out
}

// Exclude removes every job whose field equals one of targets (case-insensitive).
// Order of the remaining jobs is preserved. It returns the removed IDs.
func (v *Jobs) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	var excluded []string
	kept := v.Items[:0]
	for _, job := range v.Items {
		if _, ok := set[strings.ToLower(job.GetStringField(name))]; ok {
			excluded = append(excluded, job.ID)
			continue
		}
		kept = append(kept, job)
	}
	v.Items = kept

	return excluded
}

// Keep retains only jobs for which fn returns true and returns the IDs that were dropped.
func (v *Jobs) Keep(fn func(*Job) bool) []string {
	var dropped []string
	kept := v.Items[:0]
	for _, job := range v.Items {
		if fn(job) {
			kept = append(kept, job)
			continue
		}
		dropped = append(dropped, job.ID)
	}
	v.Items = kept
	return dropped
}

// ReportByCompany groups jobs by company for a quick overview.
func (v *Jobs) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range v.Items {
		key := job.Company
		if key == "" {
			key = "unknown"
		}
		entry := map[string]string{
			"id":         job.ID,
			"title":      job.Title,
			"url":        job.URL,
			"location":   job.Location,
			"experience": job.Experience,
			"source":     string(job.Source),
		}
		if job.Salary != "" {
			entry["salary"] = job.Salary
		}
		report[key] = append(report[key], entry)
	}
	return report
}

func (v *Jobs) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v.Items); err != nil {
		return "", err
	}
	return file.Name(), nil
}
