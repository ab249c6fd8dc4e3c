package listings

import (
	"context"
	"errors"
	"time"

	"rental-app/database"
	"rental-app/internal/apperr"
	"rental-app/internal/domain/comments"
	"rental-app/internal/domain/favorites"
	"rental-app/internal/domain/listings"

	"gorm.io/gorm"
)

// Approve publishes a PENDING listing. Approving anything else fails with a
// business-rule error and writes nothing; the operation is deliberately not
// idempotent.
func (s *Service) Approve(ctx context.Context, listingID string) (*listings.Listing, error) {
	var approved *listings.Listing
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		l, err := lockListing(tx, listingID, "")
		if err != nil {
			return err
		}
		if l.Status != listings.StatusPending {
			return apperr.Business("Only pending listings can be approved", "INVALID_STATE")
		}

		now := time.Now()
		expires := now.Add(PublishDuration)
		l.Status = listings.StatusPublished
		l.PublishedAt = &now
		l.ExpiredAt = &expires
		if err := tx.Model(l).Updates(map[string]interface{}{
			"status":          listings.StatusPublished,
			"published_at":    now,
			"expired_at":      expires,
			"rejected_reason": nil,
		}).Error; err != nil {
			return err
		}
		approved = l
		return nil
	})
	if err != nil {
		return nil, apperr.From(err)
	}

	s.invalidateListingCaches(ctx, listingID)
	return approved, nil
}

// Reject turns down a PENDING listing and keeps the moderator's reason.
func (s *Service) Reject(ctx context.Context, listingID, reason string) (*listings.Listing, error) {
	var rejected *listings.Listing
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		l, err := lockListing(tx, listingID, "")
		if err != nil {
			return err
		}
		if l.Status != listings.StatusPending {
			return apperr.Business("Only pending listings can be rejected", "INVALID_STATE")
		}
		l.Status = listings.StatusRejected
		l.RejectedReason = &reason
		if err := tx.Model(l).Updates(map[string]interface{}{
			"status":          listings.StatusRejected,
			"rejected_reason": reason,
		}).Error; err != nil {
			return err
		}
		rejected = l
		return nil
	})
	if err != nil {
		return nil, apperr.From(err)
	}
	return rejected, nil
}

// lockDraftAndParent loads an edit draft and its parent with row locks,
// parent first so concurrent approve/reject calls on the same pair cannot
// deadlock. The draft's state is verified after its lock is held.
func lockDraftAndParent(tx *gorm.DB, draftID string) (draft, parent *listings.Listing, err error) {
	var peek listings.Listing
	if err := tx.Select("id", "parent_listing_id").First(&peek, "id = ?", draftID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("Edit draft not found")
		}
		return nil, nil, err
	}
	if peek.ParentListingID == nil {
		return nil, nil, apperr.Business("Listing is not an edit draft", "NOT_EDIT_DRAFT")
	}

	parent = &listings.Listing{}
	if err := database.ForUpdate(tx).First(parent, "id = ?", *peek.ParentListingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("Parent listing not found")
		}
		return nil, nil, err
	}

	draft = &listings.Listing{}
	if err := database.ForUpdate(tx).First(draft, "id = ?", draftID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("Edit draft not found")
		}
		return nil, nil, err
	}
	if draft.Status != listings.StatusEditDraft {
		return nil, nil, apperr.Business("Listing is not an edit draft awaiting moderation", "INVALID_STATE")
	}
	if draft.ParentListingID == nil || *draft.ParentListingID != parent.ID {
		return nil, nil, apperr.Business("Edit draft no longer points at this parent", "INVALID_STATE")
	}
	return draft, parent, nil
}

// ApproveEditDraft merges an edit draft into its published parent: content
// fields are copied over, the draft's images and amenities replace the
// parent's when the draft carries any, the parent re-publishes with fresh
// timestamps and the draft row disappears. The whole merge is one transaction
// under both row locks; any failure leaves parent and draft untouched.
func (s *Service) ApproveEditDraft(ctx context.Context, draftID string) (*listings.Listing, error) {
	var merged *listings.Listing
	var oldImages []listings.ListingImage

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		draft, parent, err := lockDraftAndParent(tx, draftID)
		if err != nil {
			return err
		}

		listings.CopyContentFields(parent, draft)

		var draftImageCount int64
		if err := tx.Model(&listings.ListingImage{}).Where("listing_id = ?", draft.ID).Count(&draftImageCount).Error; err != nil {
			return err
		}
		if draftImageCount > 0 {
			if err := tx.Where("listing_id = ?", parent.ID).Find(&oldImages).Error; err != nil {
				return err
			}
			if err := tx.Where("listing_id = ?", parent.ID).Delete(&listings.ListingImage{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&listings.ListingImage{}).Where("listing_id = ?", draft.ID).
				Update("listing_id", parent.ID).Error; err != nil {
				return err
			}
		}

		var draftAmenityCount int64
		if err := tx.Model(&listings.ListingAmenity{}).Where("listing_id = ?", draft.ID).Count(&draftAmenityCount).Error; err != nil {
			return err
		}
		if draftAmenityCount > 0 {
			if err := tx.Where("listing_id = ?", parent.ID).Delete(&listings.ListingAmenity{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&listings.ListingAmenity{}).Where("listing_id = ?", draft.ID).
				Update("listing_id", parent.ID).Error; err != nil {
				return err
			}
		} else {
			// Draft kept the parent's amenity set; drop the draft's copies.
			if err := tx.Where("listing_id = ?", draft.ID).Delete(&listings.ListingAmenity{}).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		expires := now.Add(PublishDuration)
		parent.Status = listings.StatusPublished
		parent.PublishedAt = &now
		parent.ExpiredAt = &expires
		parent.RejectedReason = nil
		if err := tx.Save(parent).Error; err != nil {
			return err
		}

		if err := tx.Delete(&listings.Listing{}, "id = ?", draft.ID).Error; err != nil {
			return err
		}

		merged = parent
		return nil
	})
	if err != nil {
		return nil, apperr.From(err)
	}

	// Blob cleanup only after the merge committed, so a rollback never loses
	// the parent's stored images.
	s.destroyListingImages(ctx, oldImages)
	s.invalidateListingCaches(ctx, merged.ID)
	return merged, nil
}

// RejectEditDraft discards an edit draft: its row and uploaded images go away
// and the parent returns to PUBLISHED. The parent is restored unconditionally,
// even if it expired while the draft sat in the queue. The moderator's reason
// lands on the parent's rejected_reason so the owner can see why the edit was
// declined; the next approval clears it.
func (s *Service) RejectEditDraft(ctx context.Context, draftID, reason string) (*listings.Listing, error) {
	var restored *listings.Listing
	var draftImages []listings.ListingImage

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		draft, parent, err := lockDraftAndParent(tx, draftID)
		if err != nil {
			return err
		}

		if err := tx.Where("listing_id = ?", draft.ID).Find(&draftImages).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", draft.ID).Delete(&listings.ListingImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", draft.ID).Delete(&listings.ListingAmenity{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&listings.Listing{}, "id = ?", draft.ID).Error; err != nil {
			return err
		}

		restoreCols := map[string]interface{}{"status": listings.StatusPublished}
		if reason != "" {
			restoreCols["rejected_reason"] = reason
			parent.RejectedReason = &reason
		}
		if err := tx.Model(&listings.Listing{}).Where("id = ?", parent.ID).
			Updates(restoreCols).Error; err != nil {
			return err
		}
		parent.Status = listings.StatusPublished
		restored = parent
		return nil
	})
	if err != nil {
		return nil, apperr.From(err)
	}

	s.destroyListingImages(ctx, draftImages)
	s.invalidateListingCaches(ctx, restored.ID)
	return restored, nil
}

// HardDelete permanently removes a listing, its children (including any live
// edit draft), their blobs and every dependent row. Admin only; there is no
// way back.
func (s *Service) HardDelete(ctx context.Context, listingID string) error {
	var blobs []listings.ListingImage

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		l, err := lockListing(tx, listingID, "")
		if err != nil {
			return err
		}

		ids := []string{l.ID}
		var children []listings.Listing
		if err := tx.Where("parent_listing_id = ?", l.ID).Find(&children).Error; err != nil {
			return err
		}
		for _, child := range children {
			ids = append(ids, child.ID)
		}

		if err := tx.Where("listing_id IN ?", ids).Find(&blobs).Error; err != nil {
			return err
		}

		if err := tx.Where("listing_id IN ?", ids).Delete(&listings.ListingImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id IN ?", ids).Delete(&listings.ListingAmenity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id IN ?", ids).Delete(&favorites.Favorite{}).Error; err != nil {
			return err
		}

		var commentIDs []string
		if err := tx.Model(&comments.Comment{}).Where("listing_id IN ?", ids).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&comments.CommentLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("listing_id IN ?", ids).Delete(&comments.Comment{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&listings.Listing{}, "id IN ?", ids).Error
	})
	if err != nil {
		return apperr.From(err)
	}

	s.destroyListingImages(ctx, blobs)
	s.invalidateListingCaches(ctx, listingID)
	return nil
}
