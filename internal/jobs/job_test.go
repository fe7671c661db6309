package jobs

import (
	"context"
	"errors"
	"testing"
)

func sampleJobs() *Jobs {
	return &Jobs{Items: []*Job{
		{ID: "1", Title: "Go Developer", Company: "Acme", Source: PlatformNaukri, Location: "Bangalore"},
		{ID: "2", Title: "Python Developer", Company: "Globex", Source: PlatformLinkedIn, Salary: "10 LPA"},
		{ID: "3", Title: "Data Engineer", Company: "acme", Source: PlatformOther},
	}}
}

func TestExcludeByCompanyIsCaseInsensitive(t *testing.T) {
	jobs := sampleJobs()

	excluded := jobs.Exclude(JobCompanyField, []string{"ACME"})

	if len(excluded) != 2 || excluded[0] != "1" || excluded[1] != "3" {
		t.Fatalf("unexpected excluded ids: %v", excluded)
	}
	if jobs.Len() != 1 || jobs.Items[0].ID != "2" {
		t.Fatalf("unexpected remaining jobs: %v", jobs.IDs())
	}
}

func TestExcludeWithoutTargetsKeepsEverything(t *testing.T) {
	jobs := sampleJobs()
	if excluded := jobs.Exclude(JobIDField, nil); excluded != nil {
		t.Fatalf("expected nothing excluded, got %v", excluded)
	}
	if jobs.Len() != 3 {
		t.Fatalf("expected 3 jobs, got %d", jobs.Len())
	}
}

func TestWithoutDoesNotMutate(t *testing.T) {
	jobs := sampleJobs()
	rest := jobs.Without("2")

	if rest.Len() != 2 || rest.FindByID("2") != nil {
		t.Fatalf("unexpected rest: %v", rest.IDs())
	}
	if jobs.Len() != 3 {
		t.Fatalf("original collection changed: %v", jobs.IDs())
	}
}

func TestReportByCompany(t *testing.T) {
	report := sampleJobs().ReportByCompany()

	entries, ok := report["Globex"]
	if !ok || len(entries) != 1 {
		t.Fatalf("expected one Globex entry, got %v", report)
	}
	if entries[0]["salary"] != "10 LPA" {
		t.Fatalf("expected salary in report, got %q", entries[0]["salary"])
	}
	if _, ok := report["Acme"][0]["salary"]; ok {
		t.Fatalf("did not expect salary for Acme entry")
	}
}

func TestParsePlatform(t *testing.T) {
	tests := map[string]Platform{
		"Naukri":     PlatformNaukri,
		" linkedin ": PlatformLinkedIn,
		"indeed":     PlatformOther,
		"":           PlatformOther,
	}
	for in, want := range tests {
		if got := ParsePlatform(in); got != want {
			t.Fatalf("ParsePlatform(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAssignIDIsStable(t *testing.T) {
	a := &Job{Title: "Go Developer", Company: "Acme", URL: "https://example.com/1"}
	b := &Job{Title: "go developer", Company: "ACME", URL: "https://example.com/1"}
	c := &Job{ID: "keep-me"}

	AssignID(a)
	AssignID(b)
	AssignID(c)

	if a.ID == "" || a.ID != b.ID {
		t.Fatalf("expected equal generated ids, got %q and %q", a.ID, b.ID)
	}
	if c.ID != "keep-me" {
		t.Fatalf("existing id overwritten: %q", c.ID)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(&Job{ID: "1", Title: "Go Developer"})

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	added, err := store.Save(ctx, []*Job{{ID: "1"}, {ID: "2", Title: "SRE"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 1 {
		t.Fatalf("expected 1 job added, got %d", added)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if all.Len() != 2 {
		t.Fatalf("expected 2 jobs, got %d", all.Len())
	}
}
