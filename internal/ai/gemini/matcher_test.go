package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/joblo/internal/jobs"
	"github.com/spigell/joblo/internal/resume"
)

type stubGenerator struct {
	response    string
	err         error
	lastSystem  string
	lastMessage string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, message string) (string, error) {
	s.lastSystem = system
	s.lastMessage = message
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testProfile() *resume.Profile {
	return &resume.Profile{Name: "Jane", Skills: []string{"Go"}, RawText: "Jane\nGo developer"}
}

func testJob() *jobs.Job {
	return &jobs.Job{ID: "j1", Title: "Go Developer", Company: "Acme", Skills: []string{"Go"}}
}

func TestMatcherEvaluate(t *testing.T) {
	stub := &stubGenerator{response: `{"fit": true, "score": 0.9, "reason": "Matches skills", "message": "Hello"}`}
	matcher := NewMatcher(stub, 0.5, 0, zap.NewNop())

	assessment, err := matcher.Evaluate(context.Background(), testProfile(), testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !assessment.Fit || assessment.Score != 0.9 {
		t.Fatalf("unexpected assessment: %+v", assessment)
	}
	if assessment.Message != "Hello" || assessment.Reason != "Matches skills" {
		t.Fatalf("unexpected texts: %+v", assessment)
	}
	if assessment.Raw != stub.response {
		t.Fatalf("expected raw response to be kept")
	}

	if !strings.Contains(stub.lastSystem, "- Additional criteria: none") {
		t.Fatalf("expected default criteria in instructions, got: %s", stub.lastSystem)
	}
	if !strings.Contains(stub.lastMessage, `"resume_excerpt": "Jane\nGo developer"`) {
		t.Fatalf("expected resume excerpt in payload, got: %s", stub.lastMessage)
	}
	if strings.Contains(stub.lastMessage, `"raw_text"`) {
		t.Fatalf("full resume text must not be sent, got: %s", stub.lastMessage)
	}
	if !strings.Contains(stub.lastMessage, `"title": "Go Developer"`) {
		t.Fatalf("expected job in payload, got: %s", stub.lastMessage)
	}
}

func TestMatcherCriteria(t *testing.T) {
	stub := &stubGenerator{response: `{"fit": false, "score": 0.1}`}
	matcher := NewMatcher(stub, 0, 0, nil).WithCriteria("  no   night shifts ")

	if _, err := matcher.Evaluate(context.Background(), testProfile(), testJob()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stub.lastSystem, "- Additional criteria: no night shifts") {
		t.Fatalf("expected criteria in instructions, got: %s", stub.lastSystem)
	}
}

func TestMatcherAppliesScoreThreshold(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"fit\": \"yes\", \"score\": \"40\"}\n```"}
	matcher := NewMatcher(stub, 0.5, 0, zap.NewNop())

	assessment, err := matcher.Evaluate(context.Background(), testProfile(), testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assessment.Score != 0.4 {
		t.Fatalf("expected percentage to be normalised, got %v", assessment.Score)
	}
	if assessment.Fit {
		t.Fatalf("expected fit to be overridden by threshold")
	}
}

func TestMatcherErrors(t *testing.T) {
	matcher := NewMatcher(&stubGenerator{response: "not json"}, 0, 0, nil)

	if _, err := matcher.Evaluate(context.Background(), nil, testJob()); err == nil {
		t.Fatal("expected error for nil profile")
	}
	if _, err := matcher.Evaluate(context.Background(), testProfile(), nil); err == nil {
		t.Fatal("expected error for nil job")
	}
	if _, err := matcher.Evaluate(context.Background(), testProfile(), testJob()); err == nil {
		t.Fatal("expected parse error")
	}

	boom := errors.New("boom")
	failing := NewMatcher(&stubGenerator{err: boom}, 0, 0, nil)
	if _, err := failing.Evaluate(context.Background(), testProfile(), testJob()); !errors.Is(err, boom) {
		t.Fatalf("expected generator error, got %v", err)
	}
}

func TestParseResponseExtractsEmbeddedObject(t *testing.T) {
	assessment, err := parseResponse("Sure! {\"fit\": 1, \"score\": 0.75, \"reason\": {\"skills\": \"ok\"}} Hope it helps.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !assessment.Fit || assessment.Score != 0.75 {
		t.Fatalf("unexpected assessment %+v", assessment)
	}
	if assessment.Reason != `{"skills":"ok"}` {
		t.Fatalf("unexpected reason %q", assessment.Reason)
	}
}
