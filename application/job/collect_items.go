package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/newswaters/newswaters/domain/item"
)

// CollectItems sweeps the trailing id window of the upstream feed in
// descending chunks and stores every item the store does not have yet.
func (j *Jobs) CollectItems(ctx context.Context) error {
	itemsNum := int32(j.cfg.Env.CollectItemsNum)
	permits := j.cfg.Env.PermitsNumOr(100)
	chunkSize := int32(j.cfg.Env.ChunkSizeOr(1000))

	maxID, err := j.feed.MaxItemID(ctx)
	if err != nil {
		return fmt.Errorf("fetch max item id: %w", err)
	}

	minID := maxID - (itemsNum - 1)
	if minID < 0 {
		minID = 0
	}

	// Newest ids first so a killed sweep still covered the fresh end.
	for chunkMax := maxID; chunkMax >= minID; chunkMax -= chunkSize {
		chunkMin := chunkMax - chunkSize + 1
		if chunkMin < minID {
			chunkMin = minID
		}
		if err := j.collectChunkItems(ctx, permits, chunkMin, chunkMax); err != nil {
			return err
		}
	}
	return nil
}

func (j *Jobs) collectChunkItems(ctx context.Context, permits int, chunkMin, chunkMax int32) error {
	ids, err := j.store.MissingItems(ctx, chunkMin, chunkMax)
	if err != nil {
		return fmt.Errorf("find missing items in [%d, %d]: %w", chunkMin, chunkMax, err)
	}

	sem := semaphore.NewWeighted(int64(permits))
	var wg sync.WaitGroup
	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			it, err := j.fetchItemWithRetry(ctx, id)
			if err != nil {
				j.logger.Error("fetch item", "id", id, "error", err)
				return
			}
			if err := j.store.InsertItem(ctx, it); err != nil && !errors.Is(err, item.ErrAlreadyPresent) {
				j.logger.Error("insert item", "id", id, "error", err)
			}
		}()
	}
	wg.Wait()
	return nil
}

// fetchItemWithRetry rides out upstream hiccups; the feed drops requests
// under load and recovers within seconds.
func (j *Jobs) fetchItemWithRetry(ctx context.Context, id int32) (item.Item, error) {
	var lastErr error
	for attempt := 0; attempt < j.maxRetry; attempt++ {
		it, err := j.feed.Item(ctx, id)
		if err == nil {
			return it, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return item.Item{}, ctx.Err()
		case <-time.After(j.retryDelay):
		}
	}
	return item.Item{}, lastErr
}
