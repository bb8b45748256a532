package search

import "testing"

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name     string
		sentence string
		want     Query
	}{
		{"semantic", "rust async runtimes", Query{Sentence: "rust async runtimes"}},
		{"lexical", `"rust async runtimes"`, Query{Sentence: "rust async runtimes", Lexical: true}},
		{"leading quote only", `"partial`, Query{Sentence: `"partial`}},
		{"trailing quote only", `partial"`, Query{Sentence: `partial"`}},
		{"bare quote", `"`, Query{Sentence: `"`}},
		{"empty quotes", `""`, Query{Sentence: "", Lexical: true}},
		{"empty", "", Query{Sentence: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseQuery(tt.sentence); got != tt.want {
				t.Errorf("ParseQuery(%q) = %+v, want %+v", tt.sentence, got, tt.want)
			}
		})
	}
}
