package favorites

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Favorite struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_listing" json:"user_id"`
	ListingID string `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_listing" json:"listing_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
