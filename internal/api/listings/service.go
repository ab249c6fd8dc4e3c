package listings

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"rental-app/database"
	"rental-app/internal/apperr"
	"rental-app/internal/domain/listings"
	"rental-app/internal/domain/listingtypes"
	"rental-app/internal/infra/cache"
	"rental-app/internal/infra/storage"

	"gorm.io/gorm"
)

// PublishDuration is how long an approved listing stays live before expiring.
const PublishDuration = 30 * 24 * time.Hour

// Service is the listing lifecycle engine. Every mutating operation runs in a
// single transaction with row locks on everything it reads then writes; cache
// invalidation and blob cleanup happen after commit and are best-effort.
type Service struct {
	DB    *gorm.DB
	Store storage.ImageStore
	Cache cache.Store
}

func NewService(db *gorm.DB, store storage.ImageStore, c cache.Store) *Service {
	return &Service{DB: db, Store: store, Cache: c}
}

// invalidateListingCaches drops the search namespace and the listing's detail
// entry. Failures are logged and swallowed; the database already committed.
func (s *Service) invalidateListingCaches(ctx context.Context, listingID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.DeleteByPrefix(ctx, cache.SearchPrefix); err != nil {
		log.Printf("listings: failed to invalidate search cache: %v", err)
	}
	if err := s.Cache.Delete(ctx, cache.ListingDetailKey(listingID)); err != nil {
		log.Printf("listings: failed to invalidate detail cache for %s: %v", listingID, err)
	}
}

// lockListing loads one row FOR UPDATE, scoped to its owner when ownerID is
// non-empty.
func lockListing(tx *gorm.DB, id, ownerID string) (*listings.Listing, error) {
	var l listings.Listing
	q := database.ForUpdate(tx).Where("id = ?", id)
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	if err := q.First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Listing not found")
		}
		return nil, err
	}
	return &l, nil
}

func resolveListingType(tx *gorm.DB, code string, tolerateMissing bool) (*string, error) {
	if code == "" {
		return nil, nil
	}
	var lt listingtypes.ListingType
	if err := tx.Where("code = ?", code).First(&lt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if tolerateMissing {
				return nil, nil
			}
			return nil, apperr.NotFound(fmt.Sprintf("Listing type %q does not exist", code))
		}
		return nil, err
	}
	return &lt.ID, nil
}

func replaceAmenities(tx *gorm.DB, listingID string, amenityIDs []string) error {
	if err := tx.Where("listing_id = ?", listingID).Delete(&listings.ListingAmenity{}).Error; err != nil {
		return err
	}
	if len(amenityIDs) == 0 {
		return nil
	}
	rows := make([]listings.ListingAmenity, 0, len(amenityIDs))
	for _, id := range amenityIDs {
		rows = append(rows, listings.ListingAmenity{ListingID: listingID, AmenityID: id})
	}
	return tx.Create(&rows).Error
}

// Create makes a new listing for the owner. Direct submissions start PENDING
// and need at least one image; drafts start DRAFT and may have none.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput, imgs []ImageUpload, coverIndex int, asDraft bool) (*listings.Listing, error) {
	status := listings.StatusPending
	if asDraft {
		status = listings.StatusDraft
	}

	if !asDraft && len(imgs) == 0 {
		return nil, apperr.Validation("At least one image is required",
			apperr.FieldError{Field: "images", Message: "at least one image is required"})
	}
	if err := ValidateImages(imgs, coverIndex); err != nil {
		return nil, err
	}

	capacity := in.Capacity
	if capacity < 1 {
		capacity = 1
	}
	showPhone := true
	if in.ShowPhoneNumber != nil {
		showPhone = *in.ShowPhoneNumber
	}

	var created *listings.Listing
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		typeID, err := resolveListingType(tx, in.ListingTypeCode, asDraft)
		if err != nil {
			return err
		}

		l := listings.Listing{
			OwnerID:         ownerID,
			ListingTypeID:   typeID,
			Title:           in.Title,
			Description:     in.Description,
			Price:           in.Price,
			Area:            in.Area,
			Bedrooms:        in.Bedrooms,
			Bathrooms:       in.Bathrooms,
			Capacity:        capacity,
			Address:         in.Address,
			ProvinceCode:    in.ProvinceCode,
			WardCode:        in.WardCode,
			Longitude:       in.Longitude,
			Latitude:        in.Latitude,
			ShowPhoneNumber: showPhone,
			Status:          status,
		}
		if err := tx.Create(&l).Error; err != nil {
			return err
		}

		if len(in.AmenityIDs) > 0 {
			if err := replaceAmenities(tx, l.ID, in.AmenityIDs); err != nil {
				return err
			}
		}

		if len(imgs) > 0 {
			if err := s.uploadImages(ctx, tx, l.ID, imgs, coverIndex); err != nil {
				return err
			}
		}

		created = &l
		return nil
	})
	if err != nil {
		return nil, apperr.From(err)
	}
	return created, nil
}

// Update applies an owner edit, gated by the per-state capability table.
func (s *Service) Update(ctx context.Context, listingID, ownerID string, in UpdateInput) (*listings.Listing, error) {
	if len(in.Images) > 0 {
		if err := ValidateImages(in.Images, in.CoverIndex); err != nil {
			return nil, err
		}
	}

	var updated *listings.Listing
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		l, err := lockListing(tx, listingID, ownerID)
		if err != nil {
			return err
		}

		policy, ok := listings.PolicyFor(l.Status)
		if !ok {
			return updateForbidden(l.Status)
		}

		for name, value := range in.Fields {
			if !listings.KnownField(name) {
				return apperr.Validation(fmt.Sprintf("Unknown field %q", name),
					apperr.FieldError{Field: name, Message: "unknown field"})
			}
			if !policy.Fields[name] {
				return apperr.Business(
					fmt.Sprintf("Field %q cannot be changed while the listing is %s", name, l.Status),
					"FIELD_NOT_EDITABLE")
			}
			if name == listings.FieldListingTypeCode {
				code, isStr := value.(string)
				if !isStr {
					return apperr.Validation("listing_type_code must be a string")
				}
				typeID, err := resolveListingType(tx, code, l.Status == listings.StatusDraft)
				if err != nil {
					return err
				}
				l.ListingTypeID = typeID
				continue
			}
			if err := listings.ApplyField(l, name, value); err != nil {
				return apperr.Validation(err.Error(), apperr.FieldError{Field: name, Message: err.Error()})
			}
		}

		if err := tx.Save(l).Error; err != nil {
			return err
		}

		if in.HasAmenities {
			if !policy.AmenitiesAllowed {
				return apperr.Business(
					fmt.Sprintf("Amenities cannot be changed while the listing is %s", l.Status),
					"FIELD_NOT_EDITABLE")
			}
			if err := replaceAmenities(tx, l.ID, in.AmenityIDs); err != nil {
				return err
			}
		}

		if len(in.Images) > 0 {
			if !policy.ImagesAllowed {
				return apperr.Business(
					fmt.Sprintf("Images cannot be replaced while the listing is %s", l.Status),
					"FIELD_NOT_EDITABLE")
			}
			var old []listings.ListingImage
			if err := tx.Where("listing_id = ?", l.ID).Find(&old).Error; err != nil {
				return err
			}
			s.destroyListingImages(ctx, old)
			if err := tx.Where("listing_id = ?", l.ID).Delete(&listings.ListingImage{}).Error; err != nil {
				return err
			}
			if err := s.uploadImages(ctx, tx, l.ID, in.Images, in.CoverIndex); err != nil {
				return err
			}
		}

		updated = l
		return nil
	})
	if err != nil {
		return nil, apperr.From(err)
	}

	s.invalidateListingCaches(ctx, listingID)
	return updated, nil
}

func updateForbidden(status listings.Status) error {
	switch status {
	case listings.StatusPending:
		return apperr.Business("Listing cannot be edited while it awaits moderation", "LISTING_PENDING")
	case listings.StatusHiddenFromUser:
		return apperr.Business("Listing has a pending edit draft and cannot be edited directly", "EDIT_DRAFT_IN_PROGRESS")
	case listings.StatusDeleted:
		return apperr.Business("Listing has been deleted", "LISTING_DELETED")
	default:
		return apperr.Business(fmt.Sprintf("Listing cannot be edited while it is %s", status), "INVALID_STATE")
	}
}

// SubmitDraft moves a DRAFT with at least one image into the moderation queue.
func (s *Service) SubmitDraft(ctx context.Context, listingID, ownerID string) (*listings.Listing, error) {
	var submitted *listings.Listing
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		l, err := lockListing(tx, listingID, ownerID)
		if err != nil {
			return err
		}
		if l.Status != listings.StatusDraft {
			return apperr.Business("Only drafts can be submitted", "INVALID_STATE")
		}

		var imageCount int64
		if err := tx.Model(&listings.ListingImage{}).Where("listing_id = ?", l.ID).Count(&imageCount).Error; err != nil {
			return err
		}
		if imageCount == 0 {
			return apperr.Validation("At least one image is required",
				apperr.FieldError{Field: "images", Message: "at least one image is required"})
		}

		l.Status = listings.StatusPending
		if err := tx.Model(l).Update("status", listings.StatusPending).Error; err != nil {
			return err
		}
		submitted = l
		return nil
	})
	if err != nil {
		return nil, apperr.From(err)
	}
	return submitted, nil
}

// CreateEditDraft spawns an EDIT_DRAFT shadow of a published listing: the
// parent's content is cloned, the proposed changes applied on top, and the
// parent leaves public view until moderation settles the draft. A parent can
// have at most one live draft.
func (s *Service) CreateEditDraft(ctx context.Context, parentID, ownerID string, in UpdateInput) (*listings.Listing, error) {
	if len(in.Images) > 0 {
		if err := ValidateImages(in.Images, in.CoverIndex); err != nil {
			return nil, err
		}
	}

	var draft *listings.Listing
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		parent, err := lockListing(tx, parentID, ownerID)
		if err != nil {
			return err
		}
		if parent.Status != listings.StatusPublished {
			return apperr.Business("Only published listings can be edited through a draft", "INVALID_STATE")
		}

		var existing int64
		if err := tx.Model(&listings.Listing{}).
			Where("parent_listing_id = ? AND status = ?", parent.ID, listings.StatusEditDraft).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.Business("Listing already has an edit draft awaiting moderation", "DUPLICATE_EDIT_DRAFT")
		}

		d := listings.Listing{
			OwnerID:         parent.OwnerID,
			ParentListingID: &parent.ID,
			Status:          listings.StatusEditDraft,
		}
		listings.CopyContentFields(&d, parent)

		for name, value := range in.Fields {
			if !listings.KnownField(name) {
				return apperr.Validation(fmt.Sprintf("Unknown field %q", name),
					apperr.FieldError{Field: name, Message: "unknown field"})
			}
			if name == listings.FieldListingTypeCode {
				code, isStr := value.(string)
				if !isStr {
					return apperr.Validation("listing_type_code must be a string")
				}
				typeID, err := resolveListingType(tx, code, false)
				if err != nil {
					return err
				}
				d.ListingTypeID = typeID
				continue
			}
			if err := listings.ApplyField(&d, name, value); err != nil {
				return apperr.Validation(err.Error(), apperr.FieldError{Field: name, Message: err.Error()})
			}
		}

		if err := tx.Create(&d).Error; err != nil {
			return err
		}

		if in.HasAmenities {
			if err := replaceAmenities(tx, d.ID, in.AmenityIDs); err != nil {
				return err
			}
		} else {
			// Carry the parent's amenity set over so an approved draft
			// without amenity changes keeps it.
			var parentAmenities []listings.ListingAmenity
			if err := tx.Where("listing_id = ?", parent.ID).Find(&parentAmenities).Error; err != nil {
				return err
			}
			for i := range parentAmenities {
				parentAmenities[i].ListingID = d.ID
			}
			if len(parentAmenities) > 0 {
				if err := tx.Create(&parentAmenities).Error; err != nil {
					return err
				}
			}
		}

		if len(in.Images) > 0 {
			if err := s.uploadImages(ctx, tx, d.ID, in.Images, in.CoverIndex); err != nil {
				return err
			}
		}

		if err := tx.Model(&listings.Listing{}).Where("id = ?", parent.ID).
			Update("status", listings.StatusHiddenFromUser).Error; err != nil {
			return err
		}

		draft = &d
		return nil
	})
	if err != nil {
		return nil, apperr.From(err)
	}

	s.invalidateListingCaches(ctx, parentID)
	return draft, nil
}

// Hide takes a published listing off public view.
func (s *Service) Hide(ctx context.Context, listingID, ownerID string) (*listings.Listing, error) {
	l, err := s.flipStatus(listingID, ownerID, listings.StatusPublished, listings.StatusHidden, "Only published listings can be hidden")
	if err != nil {
		return nil, err
	}
	s.invalidateListingCaches(ctx, listingID)
	return l, nil
}

// Show puts a hidden listing back on public view.
func (s *Service) Show(ctx context.Context, listingID, ownerID string) (*listings.Listing, error) {
	l, err := s.flipStatus(listingID, ownerID, listings.StatusHidden, listings.StatusPublished, "Only hidden listings can be shown")
	if err != nil {
		return nil, err
	}
	s.invalidateListingCaches(ctx, listingID)
	return l, nil
}

func (s *Service) flipStatus(listingID, ownerID string, from, to listings.Status, guardMsg string) (*listings.Listing, error) {
	var flipped *listings.Listing
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		l, err := lockListing(tx, listingID, ownerID)
		if err != nil {
			return err
		}
		if l.Status != from {
			return apperr.Business(guardMsg, "INVALID_STATE")
		}
		l.Status = to
		if err := tx.Model(l).Update("status", to).Error; err != nil {
			return err
		}
		flipped = l
		return nil
	})
	if err != nil {
		return nil, apperr.From(err)
	}
	return flipped, nil
}

// Renew re-publishes an expired listing with fresh publish/expiry timestamps.
func (s *Service) Renew(ctx context.Context, listingID, ownerID string) (*listings.Listing, error) {
	var renewed *listings.Listing
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		l, err := lockListing(tx, listingID, ownerID)
		if err != nil {
			return err
		}
		if l.Status != listings.StatusExpired {
			return apperr.Business("Only expired listings can be renewed", "INVALID_STATE")
		}
		now := time.Now()
		expires := now.Add(PublishDuration)
		l.Status = listings.StatusPublished
		l.PublishedAt = &now
		l.ExpiredAt = &expires
		if err := tx.Model(l).Updates(map[string]interface{}{
			"status":       listings.StatusPublished,
			"published_at": now,
			"expired_at":   expires,
		}).Error; err != nil {
			return err
		}
		renewed = l
		return nil
	})
	if err != nil {
		return nil, apperr.From(err)
	}

	s.invalidateListingCaches(ctx, listingID)
	return renewed, nil
}

// SoftDelete retires a listing. Drafts never had public footprint, so they
// are removed outright; everything else keeps its row but flips to DELETED.
// Listings under moderation (PENDING or EDIT_DRAFT) cannot be deleted.
func (s *Service) SoftDelete(ctx context.Context, listingID, ownerID string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		l, err := lockListing(tx, listingID, ownerID)
		if err != nil {
			return err
		}
		switch l.Status {
		case listings.StatusPending, listings.StatusEditDraft:
			return apperr.Business("Listing cannot be deleted while it awaits moderation", "INVALID_STATE")
		case listings.StatusDeleted:
			return apperr.Business("Listing has already been deleted", "INVALID_STATE")
		}

		if l.Status == listings.StatusDraft {
			return s.purgeListingRow(ctx, tx, l)
		}

		now := time.Now()
		return tx.Model(l).Updates(map[string]interface{}{
			"status":     listings.StatusDeleted,
			"deleted_at": now,
		}).Error
	})
	if err != nil {
		return apperr.From(err)
	}

	s.invalidateListingCaches(ctx, listingID)
	return nil
}

// purgeListingRow removes a listing row with its images (rows and blobs) and
// amenity links. Must run inside a transaction holding the row lock.
func (s *Service) purgeListingRow(ctx context.Context, tx *gorm.DB, l *listings.Listing) error {
	var imgs []listings.ListingImage
	if err := tx.Where("listing_id = ?", l.ID).Find(&imgs).Error; err != nil {
		return err
	}
	s.destroyListingImages(ctx, imgs)

	if err := tx.Where("listing_id = ?", l.ID).Delete(&listings.ListingImage{}).Error; err != nil {
		return err
	}
	if err := tx.Where("listing_id = ?", l.ID).Delete(&listings.ListingAmenity{}).Error; err != nil {
		return err
	}
	return tx.Delete(&listings.Listing{}, "id = ?", l.ID).Error
}
