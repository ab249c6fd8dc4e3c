package listings

import (
	"context"
	"errors"
	"testing"
	"time"

	"rental-app/internal/apperr"
	"rental-app/internal/domain/comments"
	"rental-app/internal/domain/favorites"
	"rental-app/internal/domain/listings"
	"rental-app/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestApprovePublishes(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := createLandlord(t, svc.DB)
	l := createTestListing(t, svc.DB, owner.ID, listings.StatusPending)

	before := time.Now().Add(-time.Second)
	approved, err := svc.Approve(context.Background(), l.ID)
	require.NoError(t, err)

	assert.Equal(t, listings.StatusPublished, approved.Status)
	require.NotNil(t, approved.PublishedAt)
	require.NotNil(t, approved.ExpiredAt)
	assert.True(t, approved.PublishedAt.After(before))
	assert.WithinDuration(t, approved.PublishedAt.Add(PublishDuration), *approved.ExpiredAt, time.Second)
}

func TestApproveNonPendingWritesNothing(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := createLandlord(t, svc.DB)

	for _, status := range []listings.Status{
		listings.StatusDraft,
		listings.StatusPublished,
		listings.StatusRejected,
		listings.StatusHidden,
		listings.StatusDeleted,
	} {
		l := createTestListing(t, svc.DB, owner.ID, status)
		_, err := svc.Approve(context.Background(), l.ID)
		require.Error(t, err, "status %s", status)
		assert.True(t, apperr.Is(err, "INVALID_STATE"))
		assert.Equal(t, status, reload(t, svc.DB, l.ID).Status)
	}
}

func TestRejectStoresReason(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := createLandlord(t, svc.DB)
	l := createTestListing(t, svc.DB, owner.ID, listings.StatusPending)

	rejected, err := svc.Reject(context.Background(), l.ID, "photos do not match the address")
	require.NoError(t, err)
	assert.Equal(t, listings.StatusRejected, rejected.Status)

	got := reload(t, svc.DB, l.ID)
	require.NotNil(t, got.RejectedReason)
	assert.Equal(t, "photos do not match the address", *got.RejectedReason)
}

func TestApproveClearsRejectedReason(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := createLandlord(t, svc.DB)
	l := createTestListing(t, svc.DB, owner.ID, listings.StatusPending)

	_, err := svc.Reject(context.Background(), l.ID, "too dark")
	require.NoError(t, err)

	require.NoError(t, svc.DB.Model(&listings.Listing{}).Where("id = ?", l.ID).
		Update("status", listings.StatusPending).Error)

	_, err = svc.Approve(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Nil(t, reload(t, svc.DB, l.ID).RejectedReason)
}

// setupEditDraft builds a published parent carrying one image and one amenity,
// plus an edit draft with a changed price, the way CreateEditDraft leaves them.
func setupEditDraft(t *testing.T, svc *Service, withDraftImages bool) (parent, draft *listings.Listing) {
	owner := createLandlord(t, svc.DB)
	parent = createTestListing(t, svc.DB, owner.ID, listings.StatusPublished)
	addImage(t, svc.DB, parent.ID, "parent-img", 0)
	wifi := createAmenity(t, svc.DB, "wifi-"+parent.ID[:8])
	require.NoError(t, svc.DB.Create(&listings.ListingAmenity{ListingID: parent.ID, AmenityID: wifi.ID}).Error)

	in := UpdateInput{Fields: map[string]interface{}{"price": 1200.0}}
	if withDraftImages {
		in.Images = testImages(2)
	}
	d, err := svc.CreateEditDraft(context.Background(), parent.ID, owner.ID, in)
	require.NoError(t, err)
	return parent, d
}

func TestApproveEditDraftMergesContent(t *testing.T) {
	svc, store, _ := newTestService(t)
	parent, draft := setupEditDraft(t, svc, true)

	merged, err := svc.ApproveEditDraft(context.Background(), draft.ID)
	require.NoError(t, err)

	assert.Equal(t, parent.ID, merged.ID)
	assert.Equal(t, listings.StatusPublished, merged.Status)
	assert.Equal(t, 1200.0, *merged.Price)
	require.NotNil(t, merged.PublishedAt)
	require.NotNil(t, merged.ExpiredAt)

	// Draft row is gone.
	var count int64
	require.NoError(t, svc.DB.Model(&listings.Listing{}).Where("id = ?", draft.ID).Count(&count).Error)
	assert.Zero(t, count)

	// The draft's uploads now belong to the parent; the old blob was destroyed.
	var imgs []listings.ListingImage
	require.NoError(t, svc.DB.Where("listing_id = ?", parent.ID).Find(&imgs).Error)
	assert.Len(t, imgs, 2)
	assert.Contains(t, store.destroyedIDs(), "parent-img")

	// No orphaned rows under the draft id.
	require.NoError(t, svc.DB.Model(&listings.ListingImage{}).Where("listing_id = ?", draft.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, svc.DB.Model(&listings.ListingAmenity{}).Where("listing_id = ?", draft.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestApproveEditDraftKeepsParentImagesWhenDraftHasNone(t *testing.T) {
	svc, store, _ := newTestService(t)
	parent, draft := setupEditDraft(t, svc, false)

	_, err := svc.ApproveEditDraft(context.Background(), draft.ID)
	require.NoError(t, err)

	var imgs []listings.ListingImage
	require.NoError(t, svc.DB.Where("listing_id = ?", parent.ID).Find(&imgs).Error)
	require.Len(t, imgs, 1)
	assert.Equal(t, "parent-img", imgs[0].PublicID)
	assert.NotContains(t, store.destroyedIDs(), "parent-img")

	// The amenity set survives the merge.
	var links int64
	require.NoError(t, svc.DB.Model(&listings.ListingAmenity{}).Where("listing_id = ?", parent.ID).Count(&links).Error)
	assert.Equal(t, int64(1), links)
}

func TestApproveEditDraftRollsBackAsOne(t *testing.T) {
	svc, store, _ := newTestService(t)
	parent, draft := setupEditDraft(t, svc, true)

	boom := errors.New("boom")
	require.NoError(t, svc.DB.Callback().Delete().Before("gorm:delete").
		Register("test:fail_listing_delete", func(d *gorm.DB) {
			if d.Statement.Table == "listings" {
				d.AddError(boom)
			}
		}))
	defer svc.DB.Callback().Delete().Remove("test:fail_listing_delete")

	_, err := svc.ApproveEditDraft(context.Background(), draft.ID)
	require.Error(t, err)

	// Nothing moved: parent still hidden with its old price and image, the
	// draft row and its rows still intact, no blobs destroyed.
	gotParent := reload(t, svc.DB, parent.ID)
	assert.Equal(t, listings.StatusHiddenFromUser, gotParent.Status)
	assert.Equal(t, 1000.0, *gotParent.Price)

	gotDraft := reload(t, svc.DB, draft.ID)
	assert.Equal(t, listings.StatusEditDraft, gotDraft.Status)

	var imgs []listings.ListingImage
	require.NoError(t, svc.DB.Where("listing_id = ?", parent.ID).Find(&imgs).Error)
	require.Len(t, imgs, 1)
	assert.Equal(t, "parent-img", imgs[0].PublicID)

	var draftImgs int64
	require.NoError(t, svc.DB.Model(&listings.ListingImage{}).Where("listing_id = ?", draft.ID).Count(&draftImgs).Error)
	assert.Equal(t, int64(2), draftImgs)

	assert.Empty(t, store.destroyedIDs())
}

func TestApproveEditDraftOnNonDraft(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := createLandlord(t, svc.DB)
	l := createTestListing(t, svc.DB, owner.ID, listings.StatusPublished)

	_, err := svc.ApproveEditDraft(context.Background(), l.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, "NOT_EDIT_DRAFT"))
}

func TestRejectEditDraftRestoresParent(t *testing.T) {
	svc, store, _ := newTestService(t)
	parent, draft := setupEditDraft(t, svc, true)

	restored, err := svc.RejectEditDraft(context.Background(), draft.ID, "not an improvement")
	require.NoError(t, err)
	assert.Equal(t, parent.ID, restored.ID)
	assert.Equal(t, listings.StatusPublished, restored.Status)

	// Parent content untouched.
	gotParent := reload(t, svc.DB, parent.ID)
	assert.Equal(t, 1000.0, *gotParent.Price)

	// Draft and everything under it is gone, its uploads destroyed.
	var count int64
	require.NoError(t, svc.DB.Model(&listings.Listing{}).Where("id = ?", draft.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, svc.DB.Model(&listings.ListingImage{}).Where("listing_id = ?", draft.ID).Count(&count).Error)
	assert.Zero(t, count)
	assert.Len(t, store.destroyedIDs(), 2)
	assert.NotContains(t, store.destroyedIDs(), "parent-img")
}

func TestRejectEditDraftRestoresExpiredParent(t *testing.T) {
	svc, _, _ := newTestService(t)
	parent, draft := setupEditDraft(t, svc, false)

	// The parent expired while the draft sat in the queue; restore is
	// unconditional.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, svc.DB.Model(&listings.Listing{}).Where("id = ?", parent.ID).
		Update("expired_at", past).Error)

	restored, err := svc.RejectEditDraft(context.Background(), draft.ID, "no")
	require.NoError(t, err)
	assert.Equal(t, listings.StatusPublished, restored.Status)
}

func TestHardDeleteCascades(t *testing.T) {
	svc, store, _ := newTestService(t)
	parent, draft := setupEditDraft(t, svc, true)

	var viewer users.User
	require.NoError(t, svc.DB.First(&viewer, "id = ?", parent.OwnerID).Error)

	comment := comments.Comment{ListingID: parent.ID, UserID: viewer.ID, Content: "Is it still free?"}
	require.NoError(t, svc.DB.Create(&comment).Error)
	require.NoError(t, svc.DB.Create(&comments.CommentLike{CommentID: comment.ID, UserID: viewer.ID}).Error)
	require.NoError(t, svc.DB.Create(&favorites.Favorite{UserID: viewer.ID, ListingID: parent.ID}).Error)

	require.NoError(t, svc.HardDelete(context.Background(), parent.ID))

	var count int64
	require.NoError(t, svc.DB.Model(&listings.Listing{}).
		Where("id IN ?", []string{parent.ID, draft.ID}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, svc.DB.Model(&comments.Comment{}).Where("listing_id = ?", parent.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, svc.DB.Model(&comments.CommentLike{}).Where("comment_id = ?", comment.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, svc.DB.Model(&favorites.Favorite{}).Where("listing_id = ?", parent.ID).Count(&count).Error)
	assert.Zero(t, count)

	// Parent and draft blobs are all destroyed.
	assert.Contains(t, store.destroyedIDs(), "parent-img")
	assert.Len(t, store.destroyedIDs(), 3)
}

func TestRejectEditDraftKeepsModeratorReason(t *testing.T) {
	svc, _, _ := newTestService(t)
	parent, draft := setupEditDraft(t, svc, false)

	restored, err := svc.RejectEditDraft(context.Background(), draft.ID, "blurry photos")
	require.NoError(t, err)
	require.NotNil(t, restored.RejectedReason)
	assert.Equal(t, "blurry photos", *restored.RejectedReason)

	gotParent := reload(t, svc.DB, parent.ID)
	require.NotNil(t, gotParent.RejectedReason)
	assert.Equal(t, "blurry photos", *gotParent.RejectedReason)

	// Approving a later edit draft clears the leftover reason.
	draft2, err := svc.CreateEditDraft(context.Background(), parent.ID, parent.OwnerID, UpdateInput{})
	require.NoError(t, err)
	_, err = svc.ApproveEditDraft(context.Background(), draft2.ID)
	require.NoError(t, err)
	assert.Nil(t, reload(t, svc.DB, parent.ID).RejectedReason)
}
