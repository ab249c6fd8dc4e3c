package amenities

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

func TestAmenityCRUD(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	wifi, err := svc.Create(ctx, "Wifi", "wifi")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Parking", "car")
	require.NoError(t, err)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	got, err := svc.GetByID(wifi.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wifi", got.Name)

	updated, err := svc.Update(ctx, wifi.ID, "Fast Wifi", "wifi-bold")
	require.NoError(t, err)
	assert.Equal(t, "Fast Wifi", updated.Name)

	require.NoError(t, svc.Delete(ctx, updated.ID))
	_, err = svc.GetByID(updated.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, "NOT_FOUND"))
}

func TestAmenitySearch(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Washing machine", "washer")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Dishwasher", "dishes")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Balcony", "sun")
	require.NoError(t, err)

	rows, err := svc.Search("wash")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = svc.Search("BALCONY")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestAmenityDeleteBlockedWhileInUse(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	wifi, err := svc.Create(ctx, "Wifi", "wifi")
	require.NoError(t, err)

	var role users.Role
	require.NoError(t, db.Where("code = ?", users.RoleLandlord).First(&role).Error)
	owner := users.User{RoleID: role.ID, Email: uuid.NewString() + "@example.com", FullName: "Owner"}
	require.NoError(t, db.Create(&owner).Error)

	l := listings.Listing{OwnerID: owner.ID, Title: "With wifi", Status: listings.StatusPublished}
	require.NoError(t, db.Create(&l).Error)
	require.NoError(t, db.Create(&listings.ListingAmenity{ListingID: l.ID, AmenityID: wifi.ID}).Error)

	err = svc.Delete(ctx, wifi.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, "AMENITY_IN_USE"))

	require.NoError(t, db.Delete(&listings.ListingAmenity{}, "listing_id = ?", l.ID).Error)
	require.NoError(t, svc.Delete(ctx, wifi.ID))
}
