package search

import "strings"

// Query is a parsed search sentence.
type Query struct {
	Sentence string
	Lexical  bool
}

// ParseQuery decides the query shape: a sentence wrapped in double quotes
// is a lexical query (quotes stripped); anything else is semantic.
func ParseQuery(sentence string) Query {
	if len(sentence) >= 2 && strings.HasPrefix(sentence, `"`) && strings.HasSuffix(sentence, `"`) {
		return Query{Sentence: sentence[1 : len(sentence)-1], Lexical: true}
	}
	return Query{Sentence: sentence}
}
