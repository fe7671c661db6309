package jobs

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

type ExcludedJobs struct {
	Items []*ExcludedJob
}

type ExcludedJob struct {
	ID         string
	URL        string
	Company    string
	Reason     string `json:",omitempty"`
	ExcludedAt time.Time
}

func (v *Jobs) ToExcluded(reason string) *ExcludedJobs {
	excluded := &ExcludedJobs{}
	for _, job := range v.Items {
		excluded.Items = append(excluded.Items, &ExcludedJob{
			ID:         job.ID,
			URL:        job.URL,
			Company:    job.Company,
			Reason:     reason,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// GetExcludedJobsFromFile reads an exclude list. A missing or empty file is an empty list.
func GetExcludedJobsFromFile(path string) (*ExcludedJobs, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedJobs{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedJobs{}, nil
	}

	var excluded ExcludedJobs
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Append adds entries whose id is not listed yet.
func (v *ExcludedJobs) Append(s *ExcludedJobs) {
	known := make(map[string]struct{}, len(v.Items))
	for _, item := range v.Items {
		known[item.ID] = struct{}{}
	}
	for _, item := range s.Items {
		if _, ok := known[item.ID]; ok {
			continue
		}
		known[item.ID] = struct{}{}
		v.Items = append(v.Items, item)
	}
}

func (v *ExcludedJobs) JobIDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, job := range v.Items {
		ids = append(ids, job.ID)
	}
	return ids
}

func (v *ExcludedJobs) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
