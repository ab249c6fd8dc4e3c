package amenities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"rental-app/internal/apperr"
	"rental-app/internal/domain/amenities"
	"rental-app/internal/domain/listings"
	"rental-app/internal/infra/cache"

	"gorm.io/gorm"
)

const listCacheTTL = 15 * time.Minute

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
	if err := s.Cache.Delete(ctx, cache.AmenitiesKey); err != nil {
		log.Printf("amenities: failed to clear cache: %v", err)
	}
}

// List returns all amenities, name order, through a 15 minute cache.
func (s *Service) List(ctx context.Context) ([]amenities.Amenity, error) {
	if s.Cache != nil {
		if raw, err := s.Cache.Get(ctx, cache.AmenitiesKey); err == nil {
			var cached []amenities.Amenity
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				return cached, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Printf("amenities: cache read failed: %v", err)
		}
	}

	var rows []amenities.Amenity
	if err := s.DB.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, apperr.Database(err)
	}

	if s.Cache != nil {
		if data, err := json.Marshal(rows); err == nil {
			if err := s.Cache.Set(ctx, cache.AmenitiesKey, string(data), listCacheTTL); err != nil {
				log.Printf("amenities: cache write failed: %v", err)
			}
		}
	}
	return rows, nil
}

// Search matches name or icon, case-insensitively.
func (s *Service) Search(query string) ([]amenities.Amenity, error) {
	var rows []amenities.Amenity
	q := s.DB.Order("name ASC")
	if query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(icon) LIKE ?", pattern, pattern)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return rows, nil
}

func (s *Service) GetByID(id string) (*amenities.Amenity, error) {
	var a amenities.Amenity
	if err := s.DB.First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Amenity not found")
		}
		return nil, apperr.Database(err)
	}
	return &a, nil
}

func (s *Service) Create(ctx context.Context, name, icon string) (*amenities.Amenity, error) {
	a := amenities.Amenity{Name: name, Icon: icon}
	if err := s.DB.Create(&a).Error; err != nil {
		return nil, apperr.Database(err)
	}
	s.clearCache(ctx)
	return &a, nil
}

func (s *Service) Update(ctx context.Context, id, name, icon string) (*amenities.Amenity, error) {
	a, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(a).Updates(map[string]interface{}{"name": name, "icon": icon}).Error; err != nil {
		return nil, apperr.Database(err)
	}
	s.clearCache(ctx)
	return a, nil
}

// Delete removes an amenity, unless any listing still references it.
func (s *Service) Delete(ctx context.Context, id string) error {
	a, err := s.GetByID(id)
	if err != nil {
		return err
	}

	var usage int64
	if err := s.DB.Model(&listings.ListingAmenity{}).Where("amenity_id = ?", id).Count(&usage).Error; err != nil {
		return apperr.Database(err)
	}
	if usage > 0 {
		return apperr.Business(
			fmt.Sprintf("Amenity is still used by %d listing(s)", usage),
			"AMENITY_IN_USE")
	}

	if err := s.DB.Delete(a).Error; err != nil {
		return apperr.Database(err)
	}
	s.clearCache(ctx)
	return nil
}
