package jobs

import (
	"path/filepath"
	"testing"
)

func TestExcludedJobsRoundTripThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")

	excluded, err := GetExcludedJobsFromFile(path)
	if err != nil {
		t.Fatalf("missing file should be an empty list: %v", err)
	}
	if len(excluded.Items) != 0 {
		t.Fatalf("expected empty list, got %d", len(excluded.Items))
	}

	excluded.Append(sampleJobs().ToExcluded("not interested"))
	excluded.Append(sampleJobs().ToExcluded("again"))

	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	loaded, err := GetExcludedJobsFromFile(path)
	if err != nil {
		t.Fatalf("read exclude file: %v", err)
	}

	ids := loaded.JobIDs()
	if len(ids) != 3 {
		t.Fatalf("expected 3 unique ids, got %v", ids)
	}
	if loaded.Items[0].Reason != "not interested" {
		t.Fatalf("unexpected reason: %q", loaded.Items[0].Reason)
	}
}
