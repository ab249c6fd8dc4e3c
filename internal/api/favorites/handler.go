package favorites

import (
	"errors"
	"net/http"
	"strconv"

	"rental-app/database"
	"rental-app/internal/apperr"
	"rental-app/internal/domain/favorites"
	"rental-app/internal/domain/listings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// POST /listings/:id/favorite toggles the favorite for the current user.
func Toggle(c *gin.Context) {
	userID := c.GetString("user_id")
	listingID := c.Param("id")

	var favorited bool
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var l listings.Listing
		if err := tx.Where("id = ? AND status = ? AND deleted_at IS NULL", listingID, listings.StatusPublished).
			First(&l).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Listing does not exist or cannot be favorited")
			}
			return err
		}

		var existing favorites.Favorite
		err := tx.Where("user_id = ? AND listing_id = ?", userID, listingID).First(&existing).Error
		if err == nil {
			favorited = false
			return tx.Delete(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		favorited = true
		return tx.Create(&favorites.Favorite{UserID: userID, ListingID: listingID}).Error
	})
	if err != nil {
		c.Error(apperr.From(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "favorited": favorited})
}

// GET /favorites returns the user's favorited listings, newest first.
func ListMine(c *gin.Context) {
	userID := c.GetString("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var favIDs []string
	err := database.DB.Model(&favorites.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Pluck("listing_id", &favIDs).Error
	if err != nil {
		c.Error(apperr.Database(err))
		return
	}

	var rows []listings.Listing
	if len(favIDs) > 0 {
		err = database.DB.
			Where("id IN ? AND status = ?", favIDs, listings.StatusPublished).
			Preload("Images", func(db *gorm.DB) *gorm.DB {
				return db.Order("sort_order ASC")
			}).
			Preload("ListingType").
			Find(&rows).Error
		if err != nil {
			c.Error(apperr.Database(err))
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
}
