package comments

import (
	"time"

	"rental-app/internal/domain/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID string `gorm:"type:uuid;not null;index" json:"-"`

	UserID string      `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *users.User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	ParentID *string   `gorm:"type:uuid;index" json:"parent_id"`
	Replies  []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`

	Content   string `gorm:"type:text;not null" json:"content"`
	LikeCount int    `gorm:"not null;default:0" json:"like_count"`

	// Filled per viewer by the query layer, never persisted.
	IsLiked bool `gorm:"-" json:"is_liked"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type CommentLike struct {
	CommentID string `gorm:"type:uuid;primaryKey"`
	UserID    string `gorm:"type:uuid;primaryKey"`

	CreatedAt time.Time `json:"created_at"`
}
