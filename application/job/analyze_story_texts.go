package job

import (
	"context"
	"fmt"
	"time"

	"github.com/newswaters/newswaters/domain/item"
)

// AnalyzeStoryTexts extracts keyword lists for stories, front-page items
// first. The item's own body wins over the fetched article text; the
// latter is shortened before prompting.
func (j *Jobs) AnalyzeStoryTexts(ctx context.Context) error {
	textsNum := j.cfg.Env.AnalyzeStoryTextsNum

	topIDs, err := j.feed.TopStoryIDs(ctx)
	if err != nil {
		return fmt.Errorf("fetch top story ids: %w", err)
	}

	candidates, err := j.store.FindKeywordMissingAnalyses(ctx, topIDs)
	if err != nil {
		return fmt.Errorf("find keyword candidates: %w", err)
	}
	if len(candidates) > textsNum {
		candidates = candidates[:textsNum]
	}

	if j.cfg.Env.AnalyzeAdditionalTexts && len(candidates) < textsNum {
		additional, err := j.store.FindKeywordMissingAnalysesExcluding(
			ctx, topIDs, textsNum-len(candidates), j.cfg.Env.FindAnalysesFollowSummaries)
		if err != nil {
			return fmt.Errorf("find additional keyword candidates: %w", err)
		}
		candidates = append(candidates, additional...)
	}

	for _, c := range candidates {
		var text string
		switch {
		case c.Text != nil:
			text = *c.Text
		case c.URLText != nil:
			text = ShortenText(*c.URLText, j.cfg.Env.TextMinLineLen, j.cfg.Env.TextMaxTotalLen)
		default:
			continue
		}

		start := time.Now()
		keyword, err := j.inference.Instruct(ctx, KeywordInstruction(c.Title, text))
		if err != nil {
			j.logger.Error("instruct keyword", "id", c.ID, "error", err)
			continue
		}
		j.logger.Info("analyze story texts",
			"id", c.ID,
			"text_len", len(text),
			"keyword_len", len(keyword),
			"elapsed", time.Since(start),
		)

		if err := j.store.InsertAnalysis(ctx, item.Analysis{ItemID: c.ID, Keyword: &keyword}); err != nil {
			return fmt.Errorf("store analysis for item %d: %w", c.ID, err)
		}
	}
	return nil
}
