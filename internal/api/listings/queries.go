package listings

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"rental-app/internal/apperr"
	"rental-app/internal/domain/listings"
	"rental-app/internal/infra/cache"

	"gorm.io/gorm"
)

const detailCacheTTL = 15 * time.Minute

func withDetailPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("ListingType").
		Preload("Amenities").
		Preload("Owner").
		Preload("Owner.Role")
}

// GetByID loads one listing with images, type, amenities and owner. Published
// listings are served through the per-listing detail cache; a cache failure
// just falls through to the database.
func (s *Service) GetByID(ctx context.Context, listingID string) (*listings.Listing, error) {
	if s.Cache != nil {
		if raw, err := s.Cache.Get(ctx, cache.ListingDetailKey(listingID)); err == nil {
			var cached listings.Listing
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Printf("listings: detail cache read failed for %s: %v", listingID, err)
		}
	}

	var l listings.Listing
	if err := withDetailPreloads(s.DB).First(&l, "id = ?", listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Listing not found")
		}
		return nil, apperr.Database(err)
	}

	if s.Cache != nil && l.Status == listings.StatusPublished {
		if data, err := json.Marshal(&l); err == nil {
			if err := s.Cache.Set(ctx, cache.ListingDetailKey(l.ID), string(data), detailCacheTTL); err != nil {
				log.Printf("listings: detail cache write failed for %s: %v", l.ID, err)
			}
		}
	}

	return &l, nil
}

// RecordView buffers one view in redis, deduplicated per viewer for 15
// minutes. The flush job folds the counters into the views column later.
// Entirely best-effort.
func (s *Service) RecordView(ctx context.Context, listingID, viewerKey string) {
	if cache.Client == nil || viewerKey == "" {
		return
	}
	viewedKey := cache.ListingViewedKey(listingID, viewerKey)

	seen, err := cache.Client.Exists(ctx, viewedKey).Result()
	if err != nil {
		log.Printf("listings: view dedupe check failed: %v", err)
		return
	}
	if seen > 0 {
		return
	}
	if err := cache.Client.Set(ctx, viewedKey, 1, 15*time.Minute).Err(); err != nil {
		log.Printf("listings: view marker write failed: %v", err)
		return
	}
	if err := cache.Client.Incr(ctx, cache.ListingViewsKey(listingID)).Err(); err != nil {
		log.Printf("listings: view counter increment failed: %v", err)
	}
}

// ListByOwner pages through the owner's listings, newest first, excluding
// soft-deleted rows.
func (s *Service) ListByOwner(ownerID string, page, limit int) ([]listings.Listing, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var total int64
	if err := s.DB.Model(&listings.Listing{}).
		Where("owner_id = ? AND status <> ?", ownerID, listings.StatusDeleted).
		Count(&total).Error; err != nil {
		return nil, Pagination{}, apperr.Database(err)
	}

	var rows []listings.Listing
	err := s.DB.
		Where("owner_id = ? AND status <> ?", ownerID, listings.StatusDeleted).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("ListingType").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&rows).Error
	if err != nil {
		return nil, Pagination{}, apperr.Database(err)
	}

	return rows, NewPagination(page, limit, total), nil
}
