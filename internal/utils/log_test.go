package utils

import (
	"strings"
	"testing"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	payload := `{"profile": {"skills": ["go", "kubernetes"]}, "job": {"title": "Backend Engineer"}}`

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit logs nothing", input: payload, limit: 0, expect: ""},
		{name: "short response kept whole", input: `{"fit": true}`, limit: 200, expect: `{"fit": true}`},
		{name: "payload preview cut at limit", input: payload, limit: 12, expect: `{"profile": ...`},
		{name: "exact length is not marked", input: "0.85", limit: 4, expect: "0.85"},
		{name: "fenced response trimmed first", input: "\n  ```json  \n", limit: 7, expect: "```json"},
		{name: "cuts on runes not bytes", input: "Bengaluru résumé", limit: 12, expect: "Bengaluru ré..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestTruncateForLogDefaultPreviewLength(t *testing.T) {
	t.Parallel()

	got := TruncateForLog(strings.Repeat("a", 500), 200)
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Fatalf("expected a 200 rune preview with ellipsis, got %d chars", len(got))
	}
}
