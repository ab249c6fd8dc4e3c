package admin

import (
	"testing"

	"rental-app/database"
	"rental-app/internal/apperr"
	"rental-app/internal/domain/listings"
	"rental-app/internal/domain/users"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedRoles(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, fullName, email string) *users.User {
	var role users.Role
	require.NoError(t, db.Where("code = ?", users.RoleLandlord).First(&role).Error)
	u := users.User{RoleID: role.ID, Email: email, FullName: fullName}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func createListing(t *testing.T, db *gorm.DB, ownerID, title string, status listings.Status) *listings.Listing {
	l := listings.Listing{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Title:   title,
		Address: "1 Test Lane",
		Status:  status,
	}
	require.NoError(t, db.Create(&l).Error)
	return &l
}

func TestModerationQueueDefaultsToPendingAndEditDrafts(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Anna Tran", "anna@example.com")

	createListing(t, db, owner.ID, "Pending one", listings.StatusPending)
	createListing(t, db, owner.ID, "Edit draft", listings.StatusEditDraft)
	createListing(t, db, owner.ID, "Already live", listings.StatusPublished)
	createListing(t, db, owner.ID, "Turned down", listings.StatusRejected)

	rows, pagination, err := ListModerationQueue(db, QueueFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, int64(2), pagination.Total)
	for _, row := range rows {
		assert.Contains(t, []listings.Status{listings.StatusPending, listings.StatusEditDraft}, row.Status)
	}
}

func TestModerationQueueStatusFilter(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Anna Tran", "anna@example.com")

	createListing(t, db, owner.ID, "Pending one", listings.StatusPending)
	createListing(t, db, owner.ID, "Already live", listings.StatusPublished)

	rows, _, err := ListModerationQueue(db, QueueFilter{Status: "published"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Already live", rows[0].Title)

	_, _, err = ListModerationQueue(db, QueueFilter{Status: "floating"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, "VALIDATION_ERROR"))
}

func TestModerationQueueKeywordMatchesOwner(t *testing.T) {
	db := setupTestDB(t)
	anna := createUser(t, db, "Anna Tran", "anna@example.com")
	bob := createUser(t, db, "Bob Vu", "bob@example.com")

	createListing(t, db, anna.ID, "Garden flat", listings.StatusPending)
	createListing(t, db, bob.ID, "City studio", listings.StatusPending)

	rows, _, err := ListModerationQueue(db, QueueFilter{Keyword: "ANNA"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Garden flat", rows[0].Title)

	rows, _, err = ListModerationQueue(db, QueueFilter{Keyword: "studio"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "City studio", rows[0].Title)
}

func TestModerationQueuePagination(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Anna Tran", "anna@example.com")

	for i := 0; i < 5; i++ {
		createListing(t, db, owner.ID, "Listing", listings.StatusPending)
	}

	rows, pagination, err := ListModerationQueue(db, QueueFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, int64(5), pagination.Total)
	assert.Equal(t, 3, pagination.TotalPages)
}

func TestStatusCountsZeroFilled(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Anna Tran", "anna@example.com")

	createListing(t, db, owner.ID, "One", listings.StatusPending)
	createListing(t, db, owner.ID, "Two", listings.StatusPending)
	createListing(t, db, owner.ID, "Three", listings.StatusPublished)

	counts, err := StatusCounts(db)
	require.NoError(t, err)

	assert.Len(t, counts, len(listings.AllStatuses))
	assert.Equal(t, int64(2), counts[listings.StatusPending])
	assert.Equal(t, int64(1), counts[listings.StatusPublished])
	assert.Equal(t, int64(0), counts[listings.StatusDraft])
	assert.Equal(t, int64(0), counts[listings.StatusDeleted])
}

func TestModerationQueueStatusAllListsEverything(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "Anna Tran", "anna@example.com")

	createListing(t, db, owner.ID, "Pending one", listings.StatusPending)
	createListing(t, db, owner.ID, "Already live", listings.StatusPublished)
	createListing(t, db, owner.ID, "Tucked away", listings.StatusHidden)
	createListing(t, db, owner.ID, "Turned down", listings.StatusRejected)

	rows, pagination, err := ListModerationQueue(db, QueueFilter{Status: "ALL"})
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Equal(t, int64(4), pagination.Total)

	// Case-insensitive, same as the single-status filter.
	rows, _, err = ListModerationQueue(db, QueueFilter{Status: "all"})
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}
