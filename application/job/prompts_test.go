package job

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryInstruction(t *testing.T) {
	got := SummaryInstruction("A Title", "Some body")

	assert.Contains(t, got, "Title:\nA Title\n")
	assert.Contains(t, got, "Content:\nSome body\n")
	assert.Contains(t, got, "Output format:\n- Topics:\n- Summary:\n")
	assert.Contains(t, got, "Don't output the title.")
}

func TestKeywordInstruction(t *testing.T) {
	got := KeywordInstruction("A Title", "Some body")

	assert.Contains(t, got, "separated by commas")
	assert.Contains(t, got, "Title:\nA Title\n")
	assert.NotContains(t, got, "Output format")
}

func TestAnchorInstructions(t *testing.T) {
	summary := SummaryAnchorInstruction("the summary", 20)
	assert.Contains(t, summary, "fewer than 20 words")
	assert.Contains(t, summary, "Content:\nthe summary\n")

	comment := CommentAnchorInstruction("a comment body", 12)
	assert.Contains(t, comment, "fewer than 12 words")
	assert.Contains(t, comment, "Content:\na comment body\n")
}

func TestEntailmentAndContradictionInstructions(t *testing.T) {
	assert.Contains(t, EntailmentInstruction("cats purr"), `"cats purr"`)
	assert.Contains(t, EntailmentInstruction("cats purr"), "keeping its meaning unchanged")

	assert.Contains(t, ContradictionInstruction("cats purr"), `"cats purr"`)
	assert.Contains(t, ContradictionInstruction("cats purr"), "entirely contradictory")
}

func TestRandomInstruction(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	original := "One Two Three Four Five Six Seven Eight Nine Ten"

	got := RandomInstruction(original, 0.1, rng)

	// 10 words at 10% retention keeps int(10*0.1)+1 = 2 words.
	assert.Contains(t, got, "a minimum of 10 words")
	start := strings.Index(got, `"`)
	end := strings.LastIndex(got, `"`)
	require.Greater(t, end, start)
	kept := strings.Split(got[start+1:end], ", ")
	assert.Len(t, kept, 2)
	for _, w := range kept {
		assert.Equal(t, strings.ToLower(w), w)
		assert.Contains(t, strings.ToLower(original), w)
	}
}

func TestRandomInstruction_KeepsAtMostAllWords(t *testing.T) {
	got := RandomInstruction("solo", 0.9, rand.New(rand.NewSource(7)))
	assert.Contains(t, got, `"solo"`)
	assert.Contains(t, got, "a minimum of 1 words")
}

func TestSubjectInstruction(t *testing.T) {
	got := SubjectInstruction("the content", 5, 4)
	assert.Contains(t, got, "generate 5 different subjects")
	assert.Contains(t, got, "fewer than 4 words")
	assert.Contains(t, got, "Content:\nthe content\n")
}
