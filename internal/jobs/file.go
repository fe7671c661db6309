package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Field aliases produced by the scrapers and by mongo exports.
var fieldAliases = map[string]string{
	"_id":             "id",
	"job_description": "description",
	"job_url":         "url",
	"posted_at":       "posted_date",
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FileStore keeps jobs in a JSON file. The file is re-read on every call so
// records written by other processes are always visible.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(ctx context.Context, id string) (*Job, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	job := all.FindByID(id)
	if job == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return job, nil
}

func (s *FileStore) All(_ context.Context) (*Jobs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read()
	if err != nil {
		return nil, err
	}
	return &Jobs{Items: items}, nil
}

// Save merges the provided jobs into the file, skipping ids that already exist.
func (s *FileStore) Save(_ context.Context, items []*Job) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, err
	}

	known := make(map[string]struct{}, len(existing))
	for _, job := range existing {
		known[job.ID] = struct{}{}
	}

	added := 0
	for _, job := range items {
		AssignID(job)
		if _, ok := known[job.ID]; ok {
			continue
		}
		known[job.ID] = struct{}{}
		existing = append(existing, job)
		added++
	}

	if err := writeJobs(s.path, existing); err != nil {
		return 0, err
	}
	return added, nil
}

func (s *FileStore) Close(context.Context) error { return nil }

func (s *FileStore) read() ([]*Job, error) {
	items, err := ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	for _, job := range items {
		AssignID(job)
	}
	return items, nil
}

// ReadFile decodes a JSON array of scraped job records. Empty files yield no jobs.
func ReadFile(path string) ([]*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading jobs file %q: %w", path, err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing jobs file %q: %w", path, err)
	}

	return DecodeRecords(raw)
}

// DecodeRecords converts loosely typed records into jobs. It tolerates the
// field names used by the scrapers and comma separated skill strings.
func DecodeRecords(raw []map[string]any) ([]*Job, error) {
	items := make([]*Job, 0, len(raw))
	for idx, record := range raw {
		job, err := decodeRecord(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", idx, err)
		}
		items = append(items, job)
	}
	return items, nil
}

func decodeRecord(record map[string]any) (*Job, error) {
	normalized := make(map[string]any, len(record))
	for key, value := range record {
		key = strings.ToLower(strings.TrimSpace(key))
		if alias, ok := fieldAliases[key]; ok {
			if _, exists := record[alias]; exists {
				continue
			}
			key = alias
		}
		normalized[key] = value
	}

	if oid, ok := normalized["id"].(map[string]any); ok {
		normalized["id"] = oid["$oid"]
	}

	job := &Job{}
	cfg := &mapstructure.DecoderConfig{
		Result:           job,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToTimeHook,
			stringToSkillsHook,
		),
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(normalized); err != nil {
		return nil, err
	}

	job.Source = ParsePlatform(string(job.Source))
	job.Skills = cleanSkills(job.Skills)

	return job, nil
}

func stringToTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}

	s := strings.TrimSpace(data.(string))
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unsupported time format %q", s)
}

func stringToSkillsHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
		return data, nil
	}
	return strings.Split(data.(string), ","), nil
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}
	return out
}

func writeJobs(path string, items []*Job) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
