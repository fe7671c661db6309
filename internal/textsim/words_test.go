package textsim

import "testing"

func TestContainsWord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text   string
		word   string
		expect bool
	}{
		{text: "written in go, mostly", word: "go", expect: true},
		{text: "a good engineer", word: "go", expect: false},
		{text: "javascript only", word: "java", expect: false},
		{text: "java and javascript", word: "java", expect: true},
		{text: "modern c++ and c#", word: "c++", expect: true},
		{text: "modern c++ and c#", word: "c#", expect: true},
		{text: "node.js backend", word: "node.js", expect: true},
		{text: "mysql tuning", word: "sql", expect: false},
		{text: "r&d with r", word: "r", expect: true},
		{text: "new delhi / ncr", word: "delhi", expect: true},
		{text: "", word: "go", expect: false},
		{text: "go", word: "", expect: false},
	}

	for _, tt := range tests {
		if got := ContainsWord(tt.text, tt.word); got != tt.expect {
			t.Fatalf("ContainsWord(%q, %q): expected %v, got %v", tt.text, tt.word, tt.expect, got)
		}
	}
}
