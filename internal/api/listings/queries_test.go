package listings

import (
	"context"
	"testing"

	"rental-app/internal/apperr"
	"rental-app/internal/domain/listings"
	"rental-app/internal/infra/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetByIDCachesPublishedOnly(t *testing.T) {
	svc, _, c := newTestService(t)
	owner := createLandlord(t, svc.DB)

	published := createTestListing(t, svc.DB, owner.ID, listings.StatusPublished)
	pending := createTestListing(t, svc.DB, owner.ID, listings.StatusPending)

	_, err := svc.GetByID(context.Background(), published.ID)
	require.NoError(t, err)
	_, err = svc.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)

	_, hasPublished := c.entries[cache.ListingDetailKey(published.ID)]
	_, hasPending := c.entries[cache.ListingDetailKey(pending.ID)]
	assert.True(t, hasPublished)
	assert.False(t, hasPending)
}

func TestGetByIDServedFromCache(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := createLandlord(t, svc.DB)
	l := createTestListing(t, svc.DB, owner.ID, listings.StatusPublished)

	first, err := svc.GetByID(context.Background(), l.ID)
	require.NoError(t, err)

	// Change the row behind the cache's back: the cached copy wins until an
	// invalidating transition clears it.
	require.NoError(t, svc.DB.Model(&listings.Listing{}).Where("id = ?", l.ID).
		Update("title", "Changed directly").Error)

	second, err := svc.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Title, second.Title)
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, "NOT_FOUND"))
}

func TestSearchFindsPublishedOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := createLandlord(t, svc.DB)

	createTestListing(t, svc.DB, owner.ID, listings.StatusPublished)
	createTestListing(t, svc.DB, owner.ID, listings.StatusHidden)
	createTestListing(t, svc.DB, owner.ID, listings.StatusPending)

	result, err := svc.Search(context.Background(), SearchFilter{})
	require.NoError(t, err)
	assert.Len(t, result.Listings, 1)
	assert.Equal(t, int64(1), result.Pagination.Total)
}

func TestSearchKeywordAndPriceFilters(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := createLandlord(t, svc.DB)

	cheap := createTestListing(t, svc.DB, owner.ID, listings.StatusPublished)
	require.NoError(t, svc.DB.Model(&listings.Listing{}).Where("id = ?", cheap.ID).
		Updates(map[string]interface{}{"title": "Budget room", "price": 500.0}).Error)
	createTestListing(t, svc.DB, owner.ID, listings.StatusPublished)

	result, err := svc.Search(context.Background(), SearchFilter{Keyword: "budget"})
	require.NoError(t, err)
	require.Len(t, result.Listings, 1)
	assert.Equal(t, "Budget room", result.Listings[0].Title)

	result, err = svc.Search(context.Background(), SearchFilter{MaxPrice: 600})
	require.NoError(t, err)
	require.Len(t, result.Listings, 1)
	assert.Equal(t, "Budget room", result.Listings[0].Title)

	result, err = svc.Search(context.Background(), SearchFilter{MinPrice: 600})
	require.NoError(t, err)
	require.Len(t, result.Listings, 1)
	assert.NotEqual(t, "Budget room", result.Listings[0].Title)
}

func TestSearchCacheClearedByTransitions(t *testing.T) {
	svc, _, c := newTestService(t)
	owner := createLandlord(t, svc.DB)
	l := createTestListing(t, svc.DB, owner.ID, listings.StatusPublished)

	result, err := svc.Search(context.Background(), SearchFilter{})
	require.NoError(t, err)
	require.Len(t, result.Listings, 1)

	// A page is cached now.
	found := false
	for k := range c.entries {
		if len(k) > len(cache.SearchPrefix) && k[:len(cache.SearchPrefix)] == cache.SearchPrefix {
			found = true
		}
	}
	require.True(t, found)

	// Hiding the listing clears the whole search namespace, so the next
	// search sees the transition.
	_, err = svc.Hide(context.Background(), l.ID, owner.ID)
	require.NoError(t, err)

	result, err = svc.Search(context.Background(), SearchFilter{})
	require.NoError(t, err)
	assert.Empty(t, result.Listings)
}

func TestListByOwnerExcludesDeleted(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := createLandlord(t, svc.DB)

	createTestListing(t, svc.DB, owner.ID, listings.StatusPublished)
	createTestListing(t, svc.DB, owner.ID, listings.StatusDraft)
	createTestListing(t, svc.DB, owner.ID, listings.StatusDeleted)

	rows, pagination, err := svc.ListByOwner(owner.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, int64(2), pagination.Total)
}
