package destinations

import (
	"errors"
	"strings"

	"rental-app/database"
	"rental-app/internal/apperr"
	listingsapi "rental-app/internal/api/listings"
	"rental-app/internal/domain/destinations"

	"gorm.io/gorm"
)

// Service manages the destinations (point-of-interest) catalog that admins
// curate for the browse pages.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// CreateInput carries the admin-supplied fields for a new destination.
type CreateInput struct {
	Name         string
	Type         string
	Longitude    float64
	Latitude     float64
	ProvinceCode *int
	WardCode     *int
}

// UpdateInput patches a destination. Nil fields stay untouched; coordinates
// only move together.
type UpdateInput struct {
	Name         *string
	Type         *string
	Longitude    *float64
	Latitude     *float64
	ProvinceCode *int
	WardCode     *int
}

func validateCoordinates(longitude, latitude float64) error {
	if longitude > 180 || longitude < -180 || latitude > 90 || latitude < -90 {
		return apperr.Validation("Invalid coordinates",
			apperr.FieldError{Field: "longitude", Message: "must be within [-180, 180]"},
			apperr.FieldError{Field: "latitude", Message: "must be within [-90, 90]"})
	}
	return nil
}

func (s *Service) Create(in CreateInput) (*destinations.Destination, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("Destination name is required",
			apperr.FieldError{Field: "name", Message: "required"})
	}
	if err := validateCoordinates(in.Longitude, in.Latitude); err != nil {
		return nil, err
	}

	d := destinations.Destination{
		Name:         in.Name,
		Type:         strings.ToUpper(in.Type),
		Longitude:    in.Longitude,
		Latitude:     in.Latitude,
		ProvinceCode: in.ProvinceCode,
		WardCode:     in.WardCode,
	}
	if err := s.DB.Create(&d).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return &d, nil
}

// SearchFilter narrows the catalog: keyword matches the name
// case-insensitively, Type matches exactly.
type SearchFilter struct {
	Page    int
	Limit   int
	Keyword string
	Type    string
}

func (s *Service) Search(f SearchFilter) ([]destinations.Destination, listingsapi.Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}

	q := s.DB.Model(&destinations.Destination{})
	if f.Keyword != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Keyword)+"%")
	}
	if f.Type != "" {
		q = q.Where("type = ?", strings.ToUpper(f.Type))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, listingsapi.Pagination{}, apperr.Database(err)
	}

	var rows []destinations.Destination
	err := q.
		Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, listingsapi.Pagination{}, apperr.Database(err)
	}

	return rows, listingsapi.NewPagination(f.Page, f.Limit, total), nil
}

func (s *Service) GetByID(id string) (*destinations.Destination, error) {
	var d destinations.Destination
	if err := s.DB.First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Destination not found")
		}
		return nil, apperr.Database(err)
	}
	return &d, nil
}

func (s *Service) Update(id string, in UpdateInput) (*destinations.Destination, error) {
	// Coordinates travel as a pair.
	if (in.Longitude == nil) != (in.Latitude == nil) {
		return nil, apperr.Validation("Coordinates must be updated together",
			apperr.FieldError{Field: "longitude", Message: "both longitude and latitude are required"})
	}
	if in.Longitude != nil {
		if err := validateCoordinates(*in.Longitude, *in.Latitude); err != nil {
			return nil, err
		}
	}

	var updated *destinations.Destination
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var d destinations.Destination
		if err := database.ForUpdate(tx).First(&d, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Destination not found")
			}
			return err
		}

		if in.Name != nil {
			d.Name = *in.Name
		}
		if in.Type != nil {
			d.Type = strings.ToUpper(*in.Type)
		}
		if in.Longitude != nil {
			d.Longitude = *in.Longitude
			d.Latitude = *in.Latitude
		}
		if in.ProvinceCode != nil {
			d.ProvinceCode = in.ProvinceCode
		}
		if in.WardCode != nil {
			d.WardCode = in.WardCode
		}

		if err := tx.Save(&d).Error; err != nil {
			return err
		}
		updated = &d
		return nil
	})
	if err != nil {
		return nil, apperr.From(err)
	}
	return updated, nil
}

func (s *Service) Delete(id string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var d destinations.Destination
		if err := database.ForUpdate(tx).First(&d, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Destination not found")
			}
			return err
		}
		return tx.Delete(&d).Error
	})
	if err != nil {
		return apperr.From(err)
	}
	return nil
}

// Stats tallies the catalog per type, zero-filling the well-known types so the
// dashboard always shows the full row.
func (s *Service) Stats() (map[string]int64, error) {
	type row struct {
		Type  string
		Count int64
	}
	var rows []row
	err := s.DB.Model(&destinations.Destination{}).
		Select("type, COUNT(*) as count").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Database(err)
	}

	stats := map[string]int64{"total": 0}
	for _, t := range destinations.StatTypes {
		stats[t] = 0
	}
	for _, r := range rows {
		stats[r.Type] = r.Count
		stats["total"] += r.Count
	}
	return stats, nil
}
