package listings

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"rental-app/database"
	"rental-app/internal/domain/amenities"
	"rental-app/internal/domain/listings"
	"rental-app/internal/domain/listingtypes"
	"rental-app/internal/domain/users"
	"rental-app/internal/infra/cache"
	"rental-app/internal/infra/storage"

	"github.com/google/uuid"
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

// fakeStore is an in-memory stand-in for blob storage.
type fakeStore struct {
	mu        sync.Mutex
	uploads   int
	destroyed []string
	failAll   bool
}

func (f *fakeStore) Upload(ctx context.Context, data []byte, contentType, folder, publicID string) (storage.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return storage.UploadResult{}, errors.New("upload refused")
	}
	f.uploads++
	return storage.UploadResult{URL: "https://img.test/" + folder + "/" + publicID, PublicID: publicID}, nil
}

func (f *fakeStore) DestroyOne(ctx context.Context, folder, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

func (f *fakeStore) DestroyMany(ctx context.Context, folder string, publicIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, publicIDs...)
	return nil
}

func (f *fakeStore) destroyedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.destroyed...)
}

// fakeCache records invalidations so tests can assert on the cache contract.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.entries, k)
		f.deleted = append(f.deleted, k)
	}
	return nil
}

func (f *fakeCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.entries {
		if strings.HasPrefix(k, prefix) {
			delete(f.entries, k)
		}
	}
	f.deleted = append(f.deleted, prefix+"*")
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeCache) {
	db := setupTestDB(t)
	store := &fakeStore{}
	c := newFakeCache()
	return NewService(db, store, c), store, c
}

func createLandlord(t *testing.T, db *gorm.DB) *users.User {
	var role users.Role
	require.NoError(t, db.Where("code = ?", users.RoleLandlord).First(&role).Error)

	u := users.User{
		RoleID:   role.ID,
		Email:    uuid.NewString() + "@example.com",
		FullName: "Test Landlord",
	}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func createListingType(t *testing.T, db *gorm.DB, code string) *listingtypes.ListingType {
	lt := listingtypes.ListingType{Code: code, Name: code}
	require.NoError(t, db.Create(&lt).Error)
	return &lt
}

func createAmenity(t *testing.T, db *gorm.DB, name string) *amenities.Amenity {
	a := amenities.Amenity{Name: name, Icon: "icon-" + name}
	require.NoError(t, db.Create(&a).Error)
	return &a
}

func createTestListing(t *testing.T, db *gorm.DB, ownerID string, status listings.Status) *listings.Listing {
	price := 1000.0
	l := listings.Listing{
		OwnerID:  ownerID,
		Title:    "Sunny room downtown",
		Address:  "12 Elm Street",
		Price:    &price,
		Capacity: 2,
		Status:   status,
	}
	if status == listings.StatusPublished || status == listings.StatusExpired {
		now := time.Now()
		expires := now.Add(PublishDuration)
		if status == listings.StatusExpired {
			expires = now.Add(-time.Hour)
		}
		l.PublishedAt = &now
		l.ExpiredAt = &expires
	}
	require.NoError(t, db.Create(&l).Error)
	return &l
}

func addImage(t *testing.T, db *gorm.DB, listingID, publicID string, sortOrder int) *listings.ListingImage {
	img := listings.ListingImage{
		ListingID: listingID,
		ImageURL:  "https://img.test/listings/" + publicID,
		PublicID:  publicID,
		SortOrder: sortOrder,
	}
	require.NoError(t, db.Create(&img).Error)
	return &img
}

func testImages(n int) []ImageUpload {
	imgs := make([]ImageUpload, n)
	for i := range imgs {
		imgs[i] = ImageUpload{Data: []byte{0xFF, 0xD8, byte(i)}, ContentType: "image/jpeg"}
	}
	return imgs
}

func reload(t *testing.T, db *gorm.DB, id string) *listings.Listing {
	var l listings.Listing
	require.NoError(t, db.First(&l, "id = ?", id).Error)
	return &l
}
