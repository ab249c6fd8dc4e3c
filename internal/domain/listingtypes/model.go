package listingtypes

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListingType struct {
	ID   string `gorm:"type:uuid;primaryKey" json:"id"`
	Code string `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	Name string `gorm:"not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *ListingType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
