package job

import (
	"context"
	"fmt"
	"time"

	"github.com/newswaters/newswaters/domain/item"
)

// AnalyzeCommentTexts derives a contrastive passage set from long-enough
// comment bodies: an anchor sentence, an entailment and a contradiction
// of it, and a deliberately irrelevant sentence built from shuffled
// anchor words.
func (j *Jobs) AnalyzeCommentTexts(ctx context.Context) error {
	minLen := j.cfg.Env.AnalyzeCommentTextMinLen
	maxLen := j.cfg.Env.AnalyzeCommentTextMaxLen
	textsNum := j.cfg.Env.AnalyzeCommentTextsNum

	candidates, err := j.store.FindTextPassageMissingAnalyses(ctx, minLen, textsNum)
	if err != nil {
		return fmt.Errorf("find comment passage candidates: %w", err)
	}

	for _, c := range candidates {
		text := c.Text
		if len(text) > maxLen {
			text = text[:maxLen]
		}

		start := time.Now()
		passage, ok := j.buildPassage(ctx, c.ID,
			CommentAnchorInstruction(text, j.cfg.Env.InstructSummaryAnchorQueryMaxWordsCount))
		if !ok {
			continue
		}
		j.logger.Info("analyze comment texts",
			"id", c.ID,
			"text_len", len(text),
			"anchor_len", len(passage.Anchor[0]),
			"elapsed", time.Since(start),
		)

		encoded, err := passage.Encode()
		if err != nil {
			return fmt.Errorf("encode passage for item %d: %w", c.ID, err)
		}
		if err := j.store.InsertAnalysis(ctx, item.Analysis{ItemID: c.ID, TextPassage: &encoded}); err != nil {
			return fmt.Errorf("store analysis for item %d: %w", c.ID, err)
		}
	}
	return nil
}

// buildPassage runs the anchor, entailment, contradiction and irrelevance
// chain. A failed completion abandons the item; the next sweep retries it.
func (j *Jobs) buildPassage(ctx context.Context, id int32, anchorInstruction string) (item.Passage, bool) {
	anchor, err := j.inference.Instruct(ctx, anchorInstruction)
	if err != nil {
		j.logger.Error("instruct anchor passage", "id", id, "error", err)
		return item.Passage{}, false
	}
	entailment, err := j.inference.Instruct(ctx, EntailmentInstruction(anchor))
	if err != nil {
		j.logger.Error("instruct entailment passage", "id", id, "error", err)
		return item.Passage{}, false
	}
	contradiction, err := j.inference.Instruct(ctx, ContradictionInstruction(anchor))
	if err != nil {
		j.logger.Error("instruct contradiction passage", "id", id, "error", err)
		return item.Passage{}, false
	}
	// TODO: generate a genuinely irrelevant passage instead of shuffling
	// the contradiction's words.
	irrelevance, err := j.inference.Instruct(ctx,
		RandomInstruction(contradiction, j.cfg.Env.InstructRandomQueryWordsRetentionRate, j.rng))
	if err != nil {
		j.logger.Error("instruct irrelevance passage", "id", id, "error", err)
		return item.Passage{}, false
	}

	return item.Passage{
		Anchor:        []string{anchor},
		Entailment:    []string{entailment},
		Contradiction: []string{contradiction},
		Irrelevance:   []string{irrelevance},
		Subject:       []string{},
	}, true
}
