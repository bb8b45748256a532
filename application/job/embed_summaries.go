package job

import (
	"context"
	"fmt"
)

// RetrievalDocumentPrefix is the role marker the embedding model
// expects on document-side sentences; the search service applies the
// matching query-side marker.
const RetrievalDocumentPrefix = "Represent this document for retrieval: "

// EmbedSummaries embeds the canonical sentence of every summarized item
// that has no point in the summary collection yet. The article text wins
// over the generated summary as embedding material; the sentence also
// feeds the lexical index.
func (j *Jobs) EmbedSummaries(ctx context.Context) error {
	collection := j.cfg.SummaryCollection
	summariesNum := j.cfg.Env.EmbedSummariesNum
	chunkSize := j.cfg.Env.ChunkSizeOr(50)

	existingIDs, err := j.store.FindSummaryExistingItems(ctx, summariesNum)
	if err != nil {
		return fmt.Errorf("find summarized items: %w", err)
	}

	missingIDs, err := j.engine.FindMissing(ctx, collection, existingIDs)
	if err != nil {
		return fmt.Errorf("find missing embeddings: %w", err)
	}

	for _, chunk := range chunkIDs(missingIDs, chunkSize) {
		summaries, err := j.store.FindItemSummaries(ctx, chunk)
		if err != nil {
			return fmt.Errorf("find item summaries: %w", err)
		}
		for _, s := range summaries {
			var sentence string
			switch {
			case s.Text != nil:
				sentence = *s.Text
			case s.Summary != nil:
				sentence = *s.Summary
			default:
				continue
			}

			// The role marker goes to the model only; the lexical
			// index stores the raw sentence.
			embedding, err := j.inference.Embed(ctx, RetrievalDocumentPrefix+sentence)
			if err != nil {
				return fmt.Errorf("embed summary for item %d: %w", s.ID, err)
			}
			if err := j.engine.Upsert(ctx, collection, s.ID, embedding, &sentence); err != nil {
				return fmt.Errorf("upsert summary embedding for item %d: %w", s.ID, err)
			}
			j.logger.Info("embed summaries", "id", s.ID)
		}
	}
	return nil
}

func chunkIDs(ids []int32, size int) [][]int32 {
	if size <= 0 {
		size = len(ids)
	}
	var chunks [][]int32
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
