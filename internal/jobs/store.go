package jobs

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a job id does not resolve.
var ErrNotFound = errors.New("job not found")

// idNamespace scopes generated job ids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/spigell/joblo/jobs"))

// Source supplies job records to the scoring engine.
type Source interface {
	Get(ctx context.Context, id string) (*Job, error)
	All(ctx context.Context) (*Jobs, error)
}

// Store is a Source that can also persist scraped records.
type Store interface {
	Source
	Save(ctx context.Context, items []*Job) (int, error)
	Close(ctx context.Context) error
}

// AssignID sets a stable identifier on a job that has none. The id is derived
// from the posting's identity fields, so the same posting always gets the same id.
func AssignID(job *Job) {
	if strings.TrimSpace(job.ID) != "" {
		return
	}

	key := strings.ToLower(strings.Join([]string{
		strings.TrimSpace(job.URL),
		strings.TrimSpace(job.Title),
		strings.TrimSpace(job.Company),
		string(job.Source),
	}, "\x1f"))

	job.ID = uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// MemoryStore keeps jobs in insertion order. It is used by tests and as a
// scratch store for one-off imports.
type MemoryStore struct {
	mu    sync.RWMutex
	items []*Job
}

func NewMemoryStore(items ...*Job) *MemoryStore {
	s := &MemoryStore{}
	for _, job := range items {
		AssignID(job)
		s.items = append(s.items, job)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, job := range s.items {
		if job.ID == id {
			return job, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) All(_ context.Context) (*Jobs, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*Job, len(s.items))
	copy(items, s.items)
	return &Jobs{Items: items}, nil
}

// Save appends jobs whose id is not stored yet and reports how many were added.
func (s *MemoryStore) Save(_ context.Context, items []*Job) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string]struct{}, len(s.items))
	for _, job := range s.items {
		known[job.ID] = struct{}{}
	}

	added := 0
	for _, job := range items {
		AssignID(job)
		if _, ok := known[job.ID]; ok {
			continue
		}
		known[job.ID] = struct{}{}
		s.items = append(s.items, job)
		added++
	}
	return added, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }
