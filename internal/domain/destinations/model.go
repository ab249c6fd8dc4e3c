package destinations

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Destination types surfaced on the admin dashboard tally.
const (
	TypeUniversity = "UNIVERSITY"
	TypeMall       = "MALL"
	TypeHospital   = "HOSPITAL"
	TypePark       = "PARK"
)

// StatTypes is the fixed set the stats endpoint always reports, zero-filled.
var StatTypes = []string{TypeUniversity, TypeMall, TypeHospital, TypePark}

// Destination is a point of interest near which listings get browsed:
// a university, a mall, a hospital, a park.
type Destination struct {
	ID   string `gorm:"type:uuid;primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Type string `gorm:"type:varchar(30);not null;index" json:"type"`

	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`

	ProvinceCode *int `json:"province_code"`
	WardCode     *int `json:"ward_code"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Destination) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
