package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"rental-app/internal/apperr"
	"rental-app/internal/domain/listings"
	"rental-app/internal/infra/cache"

	"gorm.io/gorm"
)

const searchCacheTTL = 5 * time.Minute

type SearchFilter struct {
	Page            int
	Limit           int
	Keyword         string
	ProvinceCode    int
	WardCode        int
	ListingTypeCode string
	MinPrice        float64
	MaxPrice        float64
	Bedrooms        int
	AmenityIDs      []string
}

func (f SearchFilter) cacheKey() string {
	return cache.SearchKey(fmt.Sprintf(
		"p=%d:l=%d:kw=%s:pr=%d:wd=%d:tp=%s:min=%g:max=%g:bd=%d:am=%s",
		f.Page, f.Limit, f.Keyword, f.ProvinceCode, f.WardCode, f.ListingTypeCode,
		f.MinPrice, f.MaxPrice, f.Bedrooms, strings.Join(f.AmenityIDs, ","),
	))
}

type SearchResult struct {
	Listings   []listings.Listing `json:"listings"`
	Pagination Pagination         `json:"pagination"`
}

func (s *Service) searchQuery(f SearchFilter) *gorm.DB {
	q := s.DB.Model(&listings.Listing{}).
		Where("listings.status = ?", listings.StatusPublished)

	if f.Keyword != "" {
		kw := "%" + strings.ToLower(f.Keyword) + "%"
		q = q.Where("(LOWER(listings.title) LIKE ? OR LOWER(listings.address) LIKE ?)", kw, kw)
	}
	if f.ProvinceCode > 0 {
		q = q.Where("listings.province_code = ?", f.ProvinceCode)
	}
	if f.WardCode > 0 {
		q = q.Where("listings.ward_code = ?", f.WardCode)
	}
	if f.ListingTypeCode != "" {
		q = q.Joins("JOIN listing_types ON listing_types.id = listings.listing_type_id").
			Where("listing_types.code = ?", f.ListingTypeCode)
	}
	if f.MinPrice > 0 {
		q = q.Where("listings.price >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("listings.price <= ?", f.MaxPrice)
	}
	if f.Bedrooms > 0 {
		q = q.Where("listings.bedrooms >= ?", f.Bedrooms)
	}
	if len(f.AmenityIDs) > 0 {
		q = q.Where(
			"(SELECT COUNT(*) FROM listing_amenities la WHERE la.listing_id = listings.id AND la.amenity_id IN ?) = ?",
			f.AmenityIDs, len(f.AmenityIDs),
		)
	}
	return q
}

// Search pages through published listings. Result pages live in the
// listings:search: namespace until the next visibility transition clears it.
func (s *Service) Search(ctx context.Context, f SearchFilter) (*SearchResult, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 50 {
		f.Limit = 10
	}

	key := f.cacheKey()
	if s.Cache != nil {
		if raw, err := s.Cache.Get(ctx, key); err == nil {
			var cached SearchResult
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Printf("listings: search cache read failed: %v", err)
		}
	}

	var total int64
	if err := s.searchQuery(f).Count(&total).Error; err != nil {
		return nil, apperr.Database(err)
	}

	var rows []listings.Listing
	err := s.searchQuery(f).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("ListingType").
		Preload("Amenities").
		Order("listings.published_at DESC, listings.id DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Database(err)
	}

	result := &SearchResult{Listings: rows, Pagination: NewPagination(f.Page, f.Limit, total)}

	if s.Cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.Cache.Set(ctx, key, string(raw), searchCacheTTL); err != nil {
				log.Printf("listings: search cache write failed: %v", err)
			}
		}
	}
	return result, nil
}
