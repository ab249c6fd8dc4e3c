package roles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"rental-app/internal/apperr"
	"rental-app/internal/domain/users"
	"rental-app/internal/infra/cache"

	"gorm.io/gorm"
)

// Roles barely ever change, so the full list stays cached for a day.
const listCacheTTL = 24 * time.Hour

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
	if err := s.Cache.Delete(ctx, cache.RolesKey); err != nil {
		log.Printf("roles: cache clear failed: %v", err)
	}
}

// List returns every role, name-ordered, through the cache.
func (s *Service) List(ctx context.Context) ([]users.Role, error) {
	if s.Cache != nil {
		if raw, err := s.Cache.Get(ctx, cache.RolesKey); err == nil {
			var rows []users.Role
			if json.Unmarshal([]byte(raw), &rows) == nil {
				return rows, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Printf("roles: cache read failed: %v", err)
		}
	}

	var rows []users.Role
	if err := s.DB.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, apperr.Database(err)
	}

	if s.Cache != nil {
		if data, err := json.Marshal(rows); err == nil {
			if err := s.Cache.Set(ctx, cache.RolesKey, string(data), listCacheTTL); err != nil {
				log.Printf("roles: cache write failed: %v", err)
			}
		}
	}
	return rows, nil
}

// Search matches role name or code, case-insensitively.
func (s *Service) Search(keyword string) ([]users.Role, error) {
	var rows []users.Role
	q := s.DB.Order("name ASC")
	if keyword != "" {
		pattern := "%" + strings.ToLower(keyword) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(code) LIKE ?)", pattern, pattern)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return rows, nil
}

func (s *Service) GetByID(id string) (*users.Role, error) {
	var r users.Role
	if err := s.DB.First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Role not found")
		}
		return nil, apperr.Database(err)
	}
	return &r, nil
}

func (s *Service) codeTaken(code, excludeID string) (bool, error) {
	q := s.DB.Model(&users.Role{}).Where("code = ?", code)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, apperr.Database(err)
	}
	return n > 0, nil
}

func (s *Service) Create(ctx context.Context, code, name string) (*users.Role, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || name == "" {
		return nil, apperr.Validation("Role code and name are required",
			apperr.FieldError{Field: "code", Message: "required"},
			apperr.FieldError{Field: "name", Message: "required"})
	}
	taken, err := s.codeTaken(code, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Business("Role code already exists", "ROLE_CODE_EXISTS")
	}

	r := users.Role{Code: code, Name: name}
	if err := s.DB.Create(&r).Error; err != nil {
		return nil, apperr.Database(err)
	}
	s.clearCache(ctx)
	return &r, nil
}

func (s *Service) Update(ctx context.Context, id, code, name string) (*users.Role, error) {
	r, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if code != "" {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != r.Code {
			taken, err := s.codeTaken(code, r.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperr.Business("Role code already exists", "ROLE_CODE_EXISTS")
			}
		}
		r.Code = code
	}
	if name != "" {
		r.Name = name
	}

	if err := s.DB.Save(r).Error; err != nil {
		return nil, apperr.Database(err)
	}
	s.clearCache(ctx)
	return r, nil
}

// Delete removes a role unless any user still holds it.
func (s *Service) Delete(ctx context.Context, id string) error {
	r, err := s.GetByID(id)
	if err != nil {
		return err
	}

	var usage int64
	if err := s.DB.Model(&users.User{}).Where("role_id = ?", id).Count(&usage).Error; err != nil {
		return apperr.Database(err)
	}
	if usage > 0 {
		return apperr.Business(
			fmt.Sprintf("Role is still held by %d user(s)", usage),
			"ROLE_IN_USE")
	}

	if err := s.DB.Delete(r).Error; err != nil {
		return apperr.Database(err)
	}
	s.clearCache(ctx)
	return nil
}
