package admin

import (
	"strings"

	"rental-app/internal/apperr"
	listingsapi "rental-app/internal/api/listings"
	"rental-app/internal/domain/listings"

	"gorm.io/gorm"
)

// moderationStatuses is the default moderation queue: freshly submitted
// listings and edit drafts of published ones.
var moderationStatuses = []listings.Status{listings.StatusPending, listings.StatusEditDraft}

// QueueFilter narrows the moderation queue. Status empty means the default
// PENDING+EDIT_DRAFT set, "ALL" lists every status; Keyword matches title,
// address, owner name and owner email, case-insensitively.
type QueueFilter struct {
	Page    int
	Limit   int
	Status  string
	Keyword string
}

func queueQuery(db *gorm.DB, filter QueueFilter) (*gorm.DB, error) {
	q := db.Model(&listings.Listing{}).
		Joins("JOIN users ON users.id = listings.owner_id")

	switch {
	case filter.Status == "":
		q = q.Where("listings.status IN ?", moderationStatuses)
	case strings.EqualFold(filter.Status, "ALL"):
		// No status restriction: the full admin listing index.
	default:
		status := listings.Status(strings.ToUpper(filter.Status))
		if !status.Valid() {
			return nil, apperr.Validation("Unknown status filter",
				apperr.FieldError{Field: "status", Message: "unknown status"})
		}
		q = q.Where("listings.status = ?", status)
	}

	if filter.Keyword != "" {
		pattern := "%" + strings.ToLower(filter.Keyword) + "%"
		q = q.Where(
			"(LOWER(listings.title) LIKE ? OR LOWER(listings.address) LIKE ? OR LOWER(users.full_name) LIKE ? OR LOWER(users.email) LIKE ?)",
			pattern, pattern, pattern, pattern,
		)
	}

	return q, nil
}

// ListModerationQueue pages through the listings awaiting an admin decision.
func ListModerationQueue(db *gorm.DB, filter QueueFilter) ([]listings.Listing, listingsapi.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 10
	}

	countQ, err := queueQuery(db, filter)
	if err != nil {
		return nil, listingsapi.Pagination{}, err
	}
	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		return nil, listingsapi.Pagination{}, apperr.Database(err)
	}

	rowsQ, err := queueQuery(db, filter)
	if err != nil {
		return nil, listingsapi.Pagination{}, err
	}
	var rows []listings.Listing
	err = rowsQ.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("ListingType").
		Preload("Owner").
		Order("listings.created_at ASC, listings.id ASC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, listingsapi.Pagination{}, apperr.Database(err)
	}

	return rows, listingsapi.NewPagination(filter.Page, filter.Limit, total), nil
}

// StatusCounts is the per-status listing tally shown on the admin dashboard.
func StatusCounts(db *gorm.DB) (map[listings.Status]int64, error) {
	type row struct {
		Status listings.Status
		Count  int64
	}
	var rows []row
	err := db.Model(&listings.Listing{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Database(err)
	}

	counts := make(map[listings.Status]int64, len(listings.AllStatuses))
	for _, s := range listings.AllStatuses {
		counts[s] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
