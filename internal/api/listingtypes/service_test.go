package listingtypes

import (
	"context"
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
	t.Helper()
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

func TestListingTypeCRUD(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "APARTMENT", "Apartment")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "ROOM", "Single room")
	require.NoError(t, err)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	got, err := svc.GetByCode("APARTMENT")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetByCode("CASTLE")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, "NOT_FOUND"))

	updated, err := svc.Update(ctx, created.ID, "Whole apartment")
	require.NoError(t, err)
	assert.Equal(t, "Whole apartment", updated.Name)

	require.NoError(t, svc.Delete(ctx, created.ID))
	err = svc.Delete(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, "NOT_FOUND"))
}

func TestListingTypeDeleteBlockedWhileReferenced(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	lt, err := svc.Create(ctx, "HOUSE", "House")
	require.NoError(t, err)

	var role users.Role
	require.NoError(t, db.Where("code = ?", "LANDLORD").First(&role).Error)
	hash := "x"
	owner := users.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: &hash,
		FullName:     "Owner",
		RoleID:       role.ID,
	}
	require.NoError(t, db.Create(&owner).Error)

	price := 900.0
	l := listings.Listing{
		OwnerID:       owner.ID,
		Title:         "Old house",
		Price:         &price,
		Status:        listings.StatusDraft,
		ListingTypeID: &lt.ID,
	}
	require.NoError(t, db.Create(&l).Error)

	err = svc.Delete(ctx, lt.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, "LISTING_TYPE_IN_USE"))

	require.NoError(t, db.Model(&listings.Listing{}).Where("id = ?", l.ID).
		Update("listing_type_id", nil).Error)
	require.NoError(t, svc.Delete(ctx, lt.ID))
}
