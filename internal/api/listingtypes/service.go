package listingtypes

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"rental-app/internal/apperr"
	"rental-app/internal/domain/listings"
	"rental-app/internal/domain/listingtypes"
	"rental-app/internal/infra/cache"
)

const cacheTTL = 15 * time.Minute

type Service struct {
	DB    *gorm.DB
	Cache cache.Store
}

func NewService(db *gorm.DB, c cache.Store) *Service {
	return &Service{DB: db, Cache: c}
}

func (s *Service) clearCache(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, cache.ListingTypesKey); err != nil {
		log.Printf("cache: clear listing types: %v", err)
	}
}

// List returns every listing type, cached for a short window.
func (s *Service) List(ctx context.Context) ([]listingtypes.ListingType, error) {
	if s.Cache != nil {
		if raw, err := s.Cache.Get(ctx, cache.ListingTypesKey); err == nil {
			var rows []listingtypes.ListingType
			if json.Unmarshal([]byte(raw), &rows) == nil {
				return rows, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Printf("cache: read listing types: %v", err)
		}
	}

	var rows []listingtypes.ListingType
	if err := s.DB.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, apperr.From(err)
	}

	if s.Cache != nil {
		if raw, err := json.Marshal(rows); err == nil {
			if err := s.Cache.Set(ctx, cache.ListingTypesKey, string(raw), cacheTTL); err != nil {
				log.Printf("cache: write listing types: %v", err)
			}
		}
	}
	return rows, nil
}

func (s *Service) GetByCode(code string) (*listingtypes.ListingType, error) {
	var lt listingtypes.ListingType
	if err := s.DB.Where("code = ?", code).First(&lt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Listing type not found")
		}
		return nil, apperr.From(err)
	}
	return &lt, nil
}

func (s *Service) Create(ctx context.Context, code, name string) (*listingtypes.ListingType, error) {
	lt := listingtypes.ListingType{Code: code, Name: name}
	if err := s.DB.Create(&lt).Error; err != nil {
		return nil, apperr.From(err)
	}
	s.clearCache(ctx)
	return &lt, nil
}

func (s *Service) Update(ctx context.Context, id, name string) (*listingtypes.ListingType, error) {
	var lt listingtypes.ListingType
	if err := s.DB.First(&lt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Listing type not found")
		}
		return nil, apperr.From(err)
	}
	lt.Name = name
	if err := s.DB.Save(&lt).Error; err != nil {
		return nil, apperr.From(err)
	}
	s.clearCache(ctx)
	return &lt, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	var inUse int64
	if err := s.DB.Model(&listings.Listing{}).Where("listing_type_id = ?", id).Count(&inUse).Error; err != nil {
		return apperr.From(err)
	}
	if inUse > 0 {
		return apperr.Business("Listing type is still referenced by listings", "LISTING_TYPE_IN_USE")
	}
	res := s.DB.Delete(&listingtypes.ListingType{}, "id = ?", id)
	if res.Error != nil {
		return apperr.From(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Listing type not found")
	}
	s.clearCache(ctx)
	return nil
}
