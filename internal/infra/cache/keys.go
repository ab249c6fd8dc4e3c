package cache

import "fmt"

// Key layout. The search namespace is invalidated by prefix, everything else
// by exact key.
const (
	SearchPrefix    = "listings:search:"
	AmenitiesKey    = "amenities:all"
	ListingTypesKey = "listing_types:all"
	RolesKey        = "roles:all"
)

func ListingDetailKey(listingID string) string {
	return "listings:detail:" + listingID
}

func ListingViewsKey(listingID string) string {
	return "listing:views:" + listingID
}

func ListingViewedKey(listingID, viewerKey string) string {
	return fmt.Sprintf("listing:viewed:%s:%s", listingID, viewerKey)
}

func SearchKey(params string) string {
	return SearchPrefix + params
}
