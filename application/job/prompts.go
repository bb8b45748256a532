package job

import (
	"fmt"
	"math/rand"
	"strings"
)

// SummaryInstruction asks the model for topics plus a detailed summary of
// an article in a fixed output format.
func SummaryInstruction(title, text string) string {
	return fmt.Sprintf(
		"Please generate related topics and provide a detailed summary that aligns with the title and omits any irrelevant text. "+
			"Don't output the title. "+
			"Don't make up information if it's not provided.\n\n"+
			"Title:\n%s\n\n"+
			"Content:\n%s\n\n"+
			"Output format:\n- Topics:\n- Summary:\n",
		title, text,
	)
}

// KeywordInstruction asks the model for comma-separated keywords.
func KeywordInstruction(title, text string) string {
	return fmt.Sprintf(
		"Please generate related keywords that align with the title and omits any irrelevant text. "+
			"Output only the keywords without any additional explanation. "+
			"The keywords should be separated by commas. "+
			"Don't make up information if it's not provided.\n\n"+
			"Title:\n%s\n\n"+
			"Content:\n%s\n\n",
		title, text,
	)
}

// SummaryAnchorInstruction asks for a single short sentence that stands
// in for the summary as an anchor passage.
func SummaryAnchorInstruction(summary string, maxWords int) string {
	return anchorInstruction(summary, maxWords)
}

// CommentAnchorInstruction is the comment-body counterpart of
// SummaryAnchorInstruction. The two stay separate so their knobs can
// diverge again without touching callers.
func CommentAnchorInstruction(text string, maxWords int) string {
	return anchorInstruction(text, maxWords)
}

func anchorInstruction(content string, maxWords int) string {
	return fmt.Sprintf(
		"Please generate a sentence aligning with the provided content, omitting irrelevant text. "+
			"Output the sentence without additional explanation. "+
			"Ensure it is fewer than %d words.\n\n"+
			"Content:\n%s\n\n",
		maxWords, content,
	)
}

// EntailmentInstruction asks for a paraphrase that preserves the meaning
// of the premise.
func EntailmentInstruction(premise string) string {
	return fmt.Sprintf(
		"Refine the following sentence while keeping its meaning unchanged. "+
			"Output the sentence without additional explanation.\n\n"+
			"%q\n",
		premise,
	)
}

// ContradictionInstruction asks for a rewrite whose meaning is the
// opposite of the premise.
func ContradictionInstruction(premise string) string {
	return fmt.Sprintf(
		"Make modifications to the following sentence, ensuring that its meaning becomes entirely contradictory. "+
			"Output the sentence without additional explanation.\n\n"+
			"%q\n",
		premise,
	)
}

// RandomInstruction keeps a random fraction of the original words and
// asks the model to build an unrelated sentence from them. A nil rng
// falls back to the global source.
func RandomInstruction(original string, retentionRate float64, rng *rand.Rand) string {
	words := strings.Split(original, " ")
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	sentenceLen := len(words)

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})

	keep := int(float64(sentenceLen)*retentionRate) + 1
	if keep > len(words) {
		keep = len(words)
	}
	words = words[:keep]

	return fmt.Sprintf(
		"Generate a random sentence using the provided words. "+
			"Ensure the sentence contains a minimum of %d words. "+
			"Output the sentence without additional explanation.\n\n"+
			"%q\n",
		sentenceLen, strings.Join(words, ", "),
	)
}

// SubjectInstruction asks for a list of short subjects, one per line,
// covering the content.
func SubjectInstruction(content string, maxSubjects, maxWords int) string {
	return fmt.Sprintf(
		"Please generate %d different subjects aligning with the content. "+
			"Output subjects without additional explanation. "+
			"Output each subject on a separate line. "+
			"Each subject must consist of fewer than %d words.\n\n"+
			"Content:\n%s\n\n",
		maxSubjects, maxWords, content,
	)
}
