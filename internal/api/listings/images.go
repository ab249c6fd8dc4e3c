package listings

import (
	"context"
	"fmt"
	"log"
	"sync"

	"rental-app/internal/apperr"
	"rental-app/internal/domain/listings"
	"rental-app/internal/infra/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImageFolder is the blob-storage folder for listing images.
const ImageFolder = "listings"

const (
	MaxImagesPerListing = 20
	MaxImageSizeBytes   = 10 * 1024 * 1024
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// ImageUpload is one image from a multipart request, already read into memory.
type ImageUpload struct {
	Data        []byte
	ContentType string
}

// ValidateImages enforces count, mime and size limits, plus the cover index
// range when any images are present.
func ValidateImages(imgs []ImageUpload, coverIndex int) error {
	if len(imgs) > MaxImagesPerListing {
		return apperr.Validation(fmt.Sprintf("A maximum of %d images is allowed", MaxImagesPerListing),
			apperr.FieldError{Field: "images", Message: fmt.Sprintf("at most %d images", MaxImagesPerListing)})
	}
	if len(imgs) > 0 && (coverIndex < 0 || coverIndex >= len(imgs)) {
		return apperr.Validation(fmt.Sprintf("Invalid cover image index, must be between 0 and %d", len(imgs)-1),
			apperr.FieldError{Field: "coverImageIndex", Message: fmt.Sprintf("must be between 0 and %d", len(imgs)-1)})
	}
	for i, img := range imgs {
		if len(img.Data) == 0 || img.ContentType == "" {
			return apperr.Validation(fmt.Sprintf("Image %d is invalid", i+1))
		}
		if !allowedImageTypes[img.ContentType] {
			return apperr.Validation(fmt.Sprintf("Image %d must be JPG, PNG or WEBP", i+1))
		}
		if len(img.Data) > MaxImageSizeBytes {
			return apperr.Validation(fmt.Sprintf("Image %d exceeds the 10MB size limit", i+1))
		}
	}
	return nil
}

// sortOrderFor places the cover at 0 and shifts earlier images up by one, so
// the relative order of the non-cover images survives without gaps.
func sortOrderFor(i, coverIndex int) int {
	switch {
	case i == coverIndex:
		return 0
	case i < coverIndex:
		return i + 1
	default:
		return i
	}
}

// uploadImages pushes the batch to blob storage concurrently, then records the
// rows inside the caller's transaction. If any upload fails, blobs that did
// make it up are destroyed again and an Upload error is returned so the whole
// transaction rolls back.
func (s *Service) uploadImages(ctx context.Context, tx *gorm.DB, listingID string, imgs []ImageUpload, coverIndex int) error {
	results := make([]storage.UploadResult, len(imgs))
	uploadErrs := make([]error, len(imgs))

	var wg sync.WaitGroup
	for i := range imgs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			publicID := fmt.Sprintf("%s-%s", listingID, uuid.NewString())
			results[i], uploadErrs[i] = s.Store.Upload(ctx, imgs[i].Data, imgs[i].ContentType, ImageFolder, publicID)
		}(i)
	}
	wg.Wait()

	failedAt := -1
	var uploaded []string
	for i := range imgs {
		if uploadErrs[i] != nil {
			if failedAt == -1 {
				failedAt = i
			}
		} else {
			uploaded = append(uploaded, results[i].PublicID)
		}
	}
	if failedAt != -1 {
		if len(uploaded) > 0 {
			if err := s.Store.DestroyMany(ctx, ImageFolder, uploaded); err != nil {
				log.Printf("listings: cleanup of partial upload failed: %v", err)
			}
		}
		return apperr.Upload(fmt.Sprintf("Failed to upload image %d", failedAt+1), uploadErrs[failedAt])
	}

	rows := make([]listings.ListingImage, len(imgs))
	for i, res := range results {
		rows[i] = listings.ListingImage{
			ListingID: listingID,
			ImageURL:  res.URL,
			PublicID:  res.PublicID,
			SortOrder: sortOrderFor(i, coverIndex),
		}
	}
	if err := tx.Create(&rows).Error; err != nil {
		// The transaction rolls back, so the blobs have no rows pointing at
		// them anymore.
		if derr := s.Store.DestroyMany(ctx, ImageFolder, uploaded); derr != nil {
			log.Printf("listings: cleanup after failed image insert: %v", derr)
		}
		return err
	}
	return nil
}

// destroyListingImages removes a listing's blobs from storage. Failures are
// logged only; blob cleanup never fails a transition.
func (s *Service) destroyListingImages(ctx context.Context, imgs []listings.ListingImage) {
	var publicIDs []string
	for _, img := range imgs {
		if img.PublicID != "" {
			publicIDs = append(publicIDs, img.PublicID)
		}
	}
	if len(publicIDs) == 0 {
		return
	}
	if err := s.Store.DestroyMany(ctx, ImageFolder, publicIDs); err != nil {
		log.Printf("listings: failed to destroy %d stored image(s): %v", len(publicIDs), err)
	}
}
