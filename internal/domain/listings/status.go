package listings

// Status is the lifecycle state of a listing. It is only ever changed by the
// transitions in the listings service; nothing else writes this column.
type Status string

const (
	StatusDraft          Status = "DRAFT"
	StatusPending        Status = "PENDING"
	StatusPublished      Status = "PUBLISHED"
	StatusRejected       Status = "REJECTED"
	StatusHidden         Status = "HIDDEN"
	StatusHiddenFromUser Status = "HIDDEN_FROM_USER"
	StatusEditDraft      Status = "EDIT_DRAFT"
	StatusExpired        Status = "EXPIRED"
	StatusDeleted        Status = "DELETED"
)

var AllStatuses = []Status{
	StatusDraft,
	StatusPending,
	StatusPublished,
	StatusRejected,
	StatusHidden,
	StatusHiddenFromUser,
	StatusEditDraft,
	StatusExpired,
	StatusDeleted,
}

func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Field identifiers accepted by update payloads. Payload keys outside this
// schema are rejected, never silently dropped.
const (
	FieldTitle           = "title"
	FieldDescription     = "description"
	FieldShowPhoneNumber = "show_phone_number"
	FieldLongitude       = "longitude"
	FieldLatitude        = "latitude"
	FieldPrice           = "price"
	FieldArea            = "area"
	FieldBedrooms        = "bedrooms"
	FieldBathrooms       = "bathrooms"
	FieldCapacity        = "capacity"
	FieldProvinceCode    = "province_code"
	FieldWardCode        = "ward_code"
	FieldAddress         = "address"
	FieldListingTypeCode = "listing_type_code"
)

// LightFields stay editable after a listing has gone public.
var LightFields = []string{
	FieldTitle,
	FieldDescription,
	FieldShowPhoneNumber,
	FieldLongitude,
	FieldLatitude,
}

// HeavyFields change the substance of the offer and are only editable while
// the listing is a draft of some kind.
var HeavyFields = []string{
	FieldPrice,
	FieldArea,
	FieldBedrooms,
	FieldBathrooms,
	FieldCapacity,
	FieldProvinceCode,
	FieldWardCode,
	FieldAddress,
	FieldListingTypeCode,
}

// FieldPolicy is the per-state capability table for owner updates.
type FieldPolicy struct {
	Fields           map[string]bool
	ImagesAllowed    bool
	AmenitiesAllowed bool
}

func fieldSet(groups ...[]string) map[string]bool {
	set := make(map[string]bool)
	for _, g := range groups {
		for _, f := range g {
			set[f] = true
		}
	}
	return set
}

var policies = map[Status]FieldPolicy{
	StatusDraft:     {Fields: fieldSet(LightFields, HeavyFields), ImagesAllowed: true, AmenitiesAllowed: true},
	StatusEditDraft: {Fields: fieldSet(LightFields, HeavyFields), ImagesAllowed: true, AmenitiesAllowed: true},
	StatusPublished: {Fields: fieldSet(LightFields), ImagesAllowed: true, AmenitiesAllowed: true},
	StatusHidden:    {Fields: fieldSet(LightFields), ImagesAllowed: false, AmenitiesAllowed: true},
	StatusRejected:  {Fields: fieldSet(LightFields), ImagesAllowed: false, AmenitiesAllowed: true},
	StatusExpired:   {Fields: fieldSet(LightFields), ImagesAllowed: false, AmenitiesAllowed: true},
}

// PolicyFor returns the writable field set for a listing in the given state.
// PENDING listings are frozen while they wait for moderation, a parent that is
// HIDDEN_FROM_USER is frozen while its edit draft exists, and DELETED rows are
// terminal; ok is false for all three.
func PolicyFor(s Status) (FieldPolicy, bool) {
	p, ok := policies[s]
	return p, ok
}

func KnownField(name string) bool {
	switch name {
	case FieldTitle, FieldDescription, FieldShowPhoneNumber, FieldLongitude,
		FieldLatitude, FieldPrice, FieldArea, FieldBedrooms, FieldBathrooms,
		FieldCapacity, FieldProvinceCode, FieldWardCode, FieldAddress,
		FieldListingTypeCode:
		return true
	}
	return false
}
