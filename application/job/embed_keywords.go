package job

import (
	"context"
	"fmt"
)

// EmbedKeywords embeds stored keyword lists that have no point in the
// keyword collection yet. Keywords carry no prose worth indexing, so no
// sentence accompanies the upsert.
func (j *Jobs) EmbedKeywords(ctx context.Context) error {
	collection := j.cfg.KeywordCollection
	keywordsNum := j.cfg.Env.EmbedKeywordsNum
	chunkSize := j.cfg.Env.ChunkSizeOr(50)

	existingIDs, err := j.store.FindKeywordExistingAnalyses(ctx, keywordsNum)
	if err != nil {
		return fmt.Errorf("find keyword analyses: %w", err)
	}

	missingIDs, err := j.engine.FindMissing(ctx, collection, existingIDs)
	if err != nil {
		return fmt.Errorf("find missing embeddings: %w", err)
	}

	for _, chunk := range chunkIDs(missingIDs, chunkSize) {
		keywords, err := j.store.FindAnalysisKeywords(ctx, chunk)
		if err != nil {
			return fmt.Errorf("find analysis keywords: %w", err)
		}
		for _, k := range keywords {
			embedding, err := j.inference.Embed(ctx, RetrievalDocumentPrefix+k.Keyword)
			if err != nil {
				return fmt.Errorf("embed keyword for item %d: %w", k.ItemID, err)
			}
			if err := j.engine.Upsert(ctx, collection, k.ItemID, embedding, nil); err != nil {
				return fmt.Errorf("upsert keyword embedding for item %d: %w", k.ItemID, err)
			}
			j.logger.Info("embed keywords", "id", k.ItemID)
		}
	}
	return nil
}
