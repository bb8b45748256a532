package job

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AnalyzeSummaries derives a contrastive passage set plus a subject list
// from stored summaries, front-page items first.
func (j *Jobs) AnalyzeSummaries(ctx context.Context) error {
	summariesNum := j.cfg.Env.AnalyzeSummariesNum

	topIDs, err := j.feed.TopStoryIDs(ctx)
	if err != nil {
		return fmt.Errorf("fetch top story ids: %w", err)
	}

	candidates, err := j.store.FindSummaryPassageMissingAnalyses(ctx, topIDs)
	if err != nil {
		return fmt.Errorf("find summary passage candidates: %w", err)
	}
	if len(candidates) > summariesNum {
		candidates = candidates[:summariesNum]
	}

	if j.cfg.Env.AnalyzeAdditionalSummaries && len(candidates) < summariesNum {
		additional, err := j.store.FindSummaryPassageMissingAnalysesExcluding(
			ctx, topIDs, summariesNum-len(candidates))
		if err != nil {
			return fmt.Errorf("find additional summary passage candidates: %w", err)
		}
		candidates = append(candidates, additional...)
	}

	for _, c := range candidates {
		start := time.Now()
		passage, ok := j.buildPassage(ctx, c.ID,
			SummaryAnchorInstruction(c.Text, j.cfg.Env.InstructSummaryAnchorQueryMaxWordsCount))
		if !ok {
			continue
		}

		subjects, err := j.inference.Instruct(ctx,
			SubjectInstruction(c.Text, j.cfg.Env.InstructSubjectQueryMaxSubjectsNum, j.cfg.Env.InstructSubjectQueryMaxWordsCount))
		if err != nil {
			j.logger.Error("instruct subject passage", "id", c.ID, "error", err)
			continue
		}
		passage.Subject = strings.Split(subjects, "\n")

		j.logger.Info("analyze summaries",
			"id", c.ID,
			"summary_len", len(c.Text),
			"anchor_len", len(passage.Anchor[0]),
			"subjects", len(passage.Subject),
			"elapsed", time.Since(start),
		)

		encoded, err := passage.Encode()
		if err != nil {
			return fmt.Errorf("encode passage for item %d: %w", c.ID, err)
		}
		if err := j.store.UpdateAnalysisSummaryPassage(ctx, c.ID, encoded); err != nil {
			return fmt.Errorf("store summary passage for item %d: %w", c.ID, err)
		}
	}
	return nil
}
