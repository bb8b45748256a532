package job

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/newswaters/newswaters/domain/item"
)

// CollectItemURLs renders and stores the article pages of items whose
// external URL has not been fetched yet, newest first. The sweep shards
// across replicas by id so several crawlers can split the window.
func (j *Jobs) CollectItemURLs(ctx context.Context) error {
	itemsNum := int32(j.cfg.Env.CollectItemURLsNum)
	permits := j.cfg.Env.PermitsNumOr(10)
	chunkSize := int32(j.cfg.Env.ChunkSizeOr(1000))

	maxID, err := j.store.MaxItemID(ctx)
	if errors.Is(err, item.ErrEmptyTable) {
		j.logger.Info("no items collected yet, nothing to fetch")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find max item id: %w", err)
	}

	minID, err := j.store.MinItemID(ctx)
	if err != nil {
		return fmt.Errorf("find min item id: %w", err)
	}
	if windowMin := maxID - (itemsNum - 1); windowMin > minID {
		minID = windowMin
	}

	for chunkMax := maxID; chunkMax >= minID; chunkMax -= chunkSize {
		chunkMin := chunkMax - chunkSize + 1
		if chunkMin < minID {
			chunkMin = minID
		}
		if err := j.collectChunkItemURLs(ctx, permits, chunkMin, chunkMax); err != nil {
			return err
		}
	}
	return nil
}

func (j *Jobs) collectChunkItemURLs(ctx context.Context, permits int, chunkMin, chunkMax int32) error {
	rows, err := j.store.MissingItemURLs(ctx, chunkMin, chunkMax)
	if err != nil {
		return fmt.Errorf("find missing item urls in [%d, %d]: %w", chunkMin, chunkMax, err)
	}

	replicas := int32(j.cfg.Env.ReplicasNum)
	replicaIndex := int32(j.cfg.Env.ReplicaIndex)

	sem := semaphore.NewWeighted(int64(permits))
	var wg sync.WaitGroup
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if row.ID%replicas != replicaIndex {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			// Bound each page; a hung render must not stall the sweep.
			fetchCtx, cancel := context.WithTimeout(ctx, j.urlTimeout)
			defer cancel()

			u := j.fetcher.FetchURL(fetchCtx, row.URL)
			if err := j.store.InsertItemURL(ctx, row.ID, u); err != nil && !errors.Is(err, item.ErrAlreadyPresent) {
				j.logger.Error("insert item url", "id", row.ID, "error", err)
			}
		}()
	}
	wg.Wait()
	return nil
}
