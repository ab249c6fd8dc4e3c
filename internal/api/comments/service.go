package comments

import (
	"context"
	"errors"
	"log"

	"rental-app/internal/apperr"
	"rental-app/internal/domain/comments"
	"rental-app/internal/domain/listings"
	"rental-app/internal/infra/cache"

	"gorm.io/gorm"
)

// Service handles listing comments and their likes. Comment writes invalidate
// the listing's detail cache since comments ride along with the detail page.
type Service struct {
	DB    *gorm.DB
	Cache cache.Store
}

func NewService(db *gorm.DB, c cache.Store) *Service {
	return &Service{DB: db, Cache: c}
}

func (s *Service) invalidateDetail(ctx context.Context, listingID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, cache.ListingDetailKey(listingID)); err != nil {
		log.Printf("comments: failed to invalidate detail cache for %s: %v", listingID, err)
	}
}

// ListByListing returns the top-level comments with replies, newest thread
// first, replies oldest first. viewerID fills the per-viewer IsLiked flag and
// may be empty.
func (s *Service) ListByListing(listingID, viewerID string, page, limit int) ([]comments.Comment, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	var total int64
	if err := s.DB.Model(&comments.Comment{}).
		Where("listing_id = ? AND parent_id IS NULL AND deleted_at IS NULL", listingID).
		Count(&total).Error; err != nil {
		return nil, 0, apperr.Database(err)
	}

	var rows []comments.Comment
	err := s.DB.
		Where("listing_id = ? AND parent_id IS NULL AND deleted_at IS NULL", listingID).
		Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Where("deleted_at IS NULL").Order("created_at ASC")
		}).
		Preload("Replies.User").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, apperr.Database(err)
	}

	if viewerID != "" {
		if err := s.fillIsLiked(rows, viewerID); err != nil {
			return nil, 0, err
		}
	}
	return rows, total, nil
}

func (s *Service) fillIsLiked(rows []comments.Comment, viewerID string) error {
	var ids []string
	for i := range rows {
		ids = append(ids, rows[i].ID)
		for j := range rows[i].Replies {
			ids = append(ids, rows[i].Replies[j].ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var liked []string
	if err := s.DB.Model(&comments.CommentLike{}).
		Where("user_id = ? AND comment_id IN ?", viewerID, ids).
		Pluck("comment_id", &liked).Error; err != nil {
		return apperr.Database(err)
	}

	likedSet := make(map[string]bool, len(liked))
	for _, id := range liked {
		likedSet[id] = true
	}
	for i := range rows {
		rows[i].IsLiked = likedSet[rows[i].ID]
		for j := range rows[i].Replies {
			rows[i].Replies[j].IsLiked = likedSet[rows[i].Replies[j].ID]
		}
	}
	return nil
}

// Create posts a comment (or a reply) on a published listing.
func (s *Service) Create(ctx context.Context, listingID, userID, content string, parentID *string) (*comments.Comment, error) {
	var l listings.Listing
	err := s.DB.Where("id = ? AND status = ? AND deleted_at IS NULL", listingID, listings.StatusPublished).
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Listing does not exist or cannot be commented on")
		}
		return nil, apperr.Database(err)
	}

	comment := comments.Comment{
		ListingID: listingID,
		UserID:    userID,
		ParentID:  parentID,
		Content:   content,
	}
	if err := s.DB.Create(&comment).Error; err != nil {
		return nil, apperr.Database(err)
	}

	if err := s.DB.Preload("User").First(&comment, "id = ?", comment.ID).Error; err != nil {
		return nil, apperr.Database(err)
	}

	s.invalidateDetail(ctx, listingID)
	return &comment, nil
}

// Update edits a comment's content; author only.
func (s *Service) Update(ctx context.Context, commentID, userID, content string) (*comments.Comment, error) {
	var comment comments.Comment
	if err := s.DB.First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Comment not found")
		}
		return nil, apperr.Database(err)
	}
	if comment.UserID != userID {
		return nil, apperr.Authorization("You cannot edit someone else's comment")
	}

	if err := s.DB.Model(&comment).Update("content", content).Error; err != nil {
		return nil, apperr.Database(err)
	}
	if err := s.DB.Preload("User").First(&comment, "id = ?", comment.ID).Error; err != nil {
		return nil, apperr.Database(err)
	}

	s.invalidateDetail(ctx, comment.ListingID)
	return &comment, nil
}

// Delete soft-deletes a comment; author only.
func (s *Service) Delete(ctx context.Context, commentID, userID string) error {
	var comment comments.Comment
	if err := s.DB.First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Comment not found")
		}
		return apperr.Database(err)
	}
	if comment.UserID != userID {
		return apperr.Authorization("You cannot delete someone else's comment")
	}

	if err := s.DB.Model(&comment).Update("deleted_at", gorm.Expr("CURRENT_TIMESTAMP")).Error; err != nil {
		return apperr.Database(err)
	}

	s.invalidateDetail(ctx, comment.ListingID)
	return nil
}

// ToggleLike likes the comment if the user has not liked it yet, otherwise
// removes the like. Returns the resulting liked state. The like row and the
// counter move together in one transaction.
func (s *Service) ToggleLike(ctx context.Context, commentID, userID string) (bool, error) {
	var liked bool
	var listingID string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var comment comments.Comment
		if err := tx.First(&comment, "id = ?", commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Comment not found")
			}
			return err
		}
		listingID = comment.ListingID

		var existing int64
		if err := tx.Model(&comments.CommentLike{}).
			Where("comment_id = ? AND user_id = ?", commentID, userID).
			Count(&existing).Error; err != nil {
			return err
		}

		if existing > 0 {
			if err := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).
				Delete(&comments.CommentLike{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&comments.Comment{}).Where("id = ?", commentID).
				Update("like_count", gorm.Expr("like_count - 1")).Error; err != nil {
				return err
			}
			liked = false
			return nil
		}

		if err := tx.Create(&comments.CommentLike{CommentID: commentID, UserID: userID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&comments.Comment{}).Where("id = ?", commentID).
			Update("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, apperr.From(err)
	}

	s.invalidateDetail(ctx, listingID)
	return liked, nil
}
