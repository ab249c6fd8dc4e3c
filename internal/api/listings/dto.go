package listings

// CreateInput carries the owner-supplied fields for a new listing. Optional
// numeric fields stay nil when the form omits them, which a DRAFT tolerates.
type CreateInput struct {
	Title           string
	Description     string
	Address         string
	ListingTypeCode string

	Price     *float64
	Area      *float64
	Longitude *float64
	Latitude  *float64

	Bedrooms  int
	Bathrooms int
	Capacity  int

	ProvinceCode *int
	WardCode     *int

	ShowPhoneNumber *bool

	AmenityIDs []string
}

// UpdateInput is an owner update: a raw field map validated against the
// per-state capability table, plus optional image/amenity replacements.
type UpdateInput struct {
	Fields     map[string]interface{}
	AmenityIDs []string
	// HasAmenities distinguishes "replace with empty set" from "leave alone".
	HasAmenities bool
	Images       []ImageUpload
	CoverIndex   int
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
