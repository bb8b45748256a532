package item

import "encoding/json"

// Passage groups the contrastive sentences derived from one source text.
// Each role holds a list of sentences; the lists are used downstream as
// retrieval training material.
type Passage struct {
	Anchor        []string `json:"anchor"`
	Entailment    []string `json:"entailment"`
	Contradiction []string `json:"contradiction"`
	Irrelevance   []string `json:"irrelevance"`
	Subject       []string `json:"subject"`
}

// Encode serializes the passage to its canonical JSON form.
func (p Passage) Encode() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodePassage parses the canonical JSON form.
func DecodePassage(raw string) (Passage, error) {
	var p Passage
	err := json.Unmarshal([]byte(raw), &p)
	return p, err
}

// Analysis is the LLM-derived artifact record for one item. At most one
// row exists per item; fields are filled in as the workers progress.
type Analysis struct {
	ItemID         int32
	Keyword        *string
	TextPassage    *string
	SummaryPassage *string
}
