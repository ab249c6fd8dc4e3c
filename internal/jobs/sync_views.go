package jobs

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"rental-app/internal/domain/listings"
	"rental-app/internal/infra/cache"

	"gorm.io/gorm"
)

const viewSyncInterval = 5 * time.Minute

// StartViewSync folds the buffered redis view counters into the listings
// table on a fixed interval. Runs until the context is cancelled.
func StartViewSync(ctx context.Context, db *gorm.DB) {
	ticker := time.NewTicker(viewSyncInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := FlushViews(ctx, db); err != nil {
					log.Printf("jobs: view sync failed: %v", err)
				}
			}
		}
	}()
}

// FlushViews reads every listing:views:* counter, adds the counts to the
// rows inside one transaction and deletes the keys afterwards.
func FlushViews(ctx context.Context, db *gorm.DB) error {
	if cache.Client == nil {
		return nil
	}

	prefix := cache.ListingViewsKey("")
	iter := cache.Client.Scan(ctx, 0, prefix+"*", 0).Iterator()

	counts := map[string]int64{}
	var keys []string
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := cache.Client.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		listingID := strings.TrimPrefix(key, prefix)
		counts[listingID] = n
		keys = append(keys, key)
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(counts) == 0 {
		return nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for listingID, n := range counts {
			if err := tx.Model(&listings.Listing{}).
				Where("id = ?", listingID).
				Update("views", gorm.Expr("views + ?", n)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := cache.Client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("jobs: view counter cleanup failed: %v", err)
	}
	log.Printf("jobs: flushed view counters for %d listings", len(counts))
	return nil
}
