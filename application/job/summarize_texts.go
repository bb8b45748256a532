package job

import (
	"context"
	"fmt"
	"time"
)

// SummarizeTexts summarizes fetched article pages, front-page items
// first, and stores the summary on the item_urls row.
func (j *Jobs) SummarizeTexts(ctx context.Context) error {
	textsNum := j.cfg.Env.SummarizeTextsNum

	topIDs, err := j.feed.TopStoryIDs(ctx)
	if err != nil {
		return fmt.Errorf("fetch top story ids: %w", err)
	}

	candidates, err := j.store.FindSummaryMissingItems(ctx, topIDs)
	if err != nil {
		return fmt.Errorf("find summary candidates: %w", err)
	}
	// Truncate in memory; a SQL LIMIT would not keep the front-page order.
	if len(candidates) > textsNum {
		candidates = candidates[:textsNum]
	}

	if j.cfg.Env.SummarizeAdditionalTexts && len(candidates) < textsNum {
		additional, err := j.store.FindSummaryMissingItemsExcluding(ctx, topIDs, textsNum-len(candidates))
		if err != nil {
			return fmt.Errorf("find additional summary candidates: %w", err)
		}
		candidates = append(candidates, additional...)
	}

	for _, c := range candidates {
		shortened := ShortenText(c.Text, j.cfg.Env.TextMinLineLen, j.cfg.Env.TextMaxTotalLen)

		start := time.Now()
		summary, err := j.inference.Instruct(ctx, SummaryInstruction(c.Title, shortened))
		if err != nil {
			j.logger.Error("instruct summary", "id", c.ID, "error", err)
			continue
		}
		j.logger.Info("summarize texts",
			"id", c.ID,
			"shortened_text_len", len(shortened),
			"summary_len", len(summary),
			"elapsed", time.Since(start),
		)

		if err := j.store.UpdateItemURLSummary(ctx, c.ID, summary); err != nil {
			return fmt.Errorf("store summary for item %d: %w", c.ID, err)
		}
	}
	return nil
}
