package listings

import (
	"time"

	"rental-app/internal/domain/amenities"
	"rental-app/internal/domain/listingtypes"
	"rental-app/internal/domain/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Listing struct {
	ID      string      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID string      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   *users.User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	ListingTypeID *string                   `gorm:"type:uuid;index" json:"-"`
	ListingType   *listingtypes.ListingType `gorm:"foreignKey:ListingTypeID" json:"listing_type,omitempty"`

	// Non-nil only for EDIT_DRAFT rows: the published listing this draft shadows.
	ParentListingID *string  `gorm:"type:uuid;index" json:"parent_listing_id,omitempty"`
	ParentListing   *Listing `gorm:"foreignKey:ParentListingID" json:"-"`

	Title       string   `json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Price       *float64 `gorm:"type:decimal(12,2)" json:"price"`
	Area        *float64 `gorm:"type:decimal(8,2)" json:"area"`
	Bedrooms    int      `gorm:"not null;default:0" json:"bedrooms"`
	Bathrooms   int      `gorm:"not null;default:0" json:"bathrooms"`
	Capacity    int      `gorm:"not null;default:1" json:"capacity"`

	Address      string   `gorm:"type:text" json:"address"`
	ProvinceCode *int     `json:"province_code"`
	WardCode     *int     `json:"ward_code"`
	Longitude    *float64 `json:"longitude"`
	Latitude     *float64 `json:"latitude"`

	ShowPhoneNumber bool `gorm:"not null;default:true" json:"show_phone_number"`

	// Synced from redis by the view-flush job; eventually consistent.
	Views int `gorm:"not null;default:0" json:"views"`

	Status         Status  `gorm:"type:varchar(20);not null;index" json:"status"`
	RejectedReason *string `json:"rejected_reason,omitempty"`

	Images    []ListingImage      `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE;" json:"images,omitempty"`
	Amenities []amenities.Amenity `gorm:"many2many:listing_amenities;" json:"amenities,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ExpiredAt   *time.Time `json:"expired_at,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

type ListingImage struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID string `gorm:"type:uuid;not null;index" json:"-"`

	ImageURL string `gorm:"type:text;not null" json:"image_url"`
	// Object key in blob storage, kept so the object can be destroyed later.
	PublicID  string `gorm:"type:text" json:"public_id"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`

	CreatedAt time.Time `json:"created_at"`
}

func (i *ListingImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

type ListingAmenity struct {
	ListingID string `gorm:"type:uuid;primaryKey"`
	AmenityID string `gorm:"type:uuid;primaryKey"`
}
