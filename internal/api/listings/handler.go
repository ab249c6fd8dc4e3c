package listings

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

var svc *Service

// Init wires the package handlers to a service instance; called once from
// route registration.
func Init(s *Service) {
	svc = s
}

func mustUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}

// readImages pulls the multipart "images" files into memory.
func readImages(c *gin.Context) ([]ImageUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, err
	}
	files := form.File["images"]
	imgs := make([]ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		imgs = append(imgs, ImageUpload{Data: data, ContentType: fh.Header.Get("Content-Type")})
	}
	return imgs, nil
}

func coverIndex(c *gin.Context) int {
	idx, err := strconv.Atoi(c.DefaultPostForm("cover_index", "0"))
	if err != nil {
		return -1
	}
	return idx
}

// POST /listings and POST /drafts
// Multipart: "data" holds the JSON payload, "images" the files.
func CreateListing(c *gin.Context) {
	createListing(c, false)
}

func CreateDraftListing(c *gin.Context) {
	createListing(c, true)
}

func createListing(c *gin.Context, asDraft bool) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var payload createPayload
	if raw := c.PostForm("data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed data payload"})
			return
		}
	}
	in := CreateInput(payload)

	imgs, err := readImages(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	listing, err := svc.Create(c.Request.Context(), userID, in, imgs, coverIndex(c), asDraft)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": listing})
}

// createPayload maps the wire names onto CreateInput.
type createPayload struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Address         string   `json:"address"`
	ListingTypeCode string   `json:"listing_type_code"`
	Price           *float64 `json:"price"`
	Area            *float64 `json:"area"`
	Longitude       *float64 `json:"longitude"`
	Latitude        *float64 `json:"latitude"`
	Bedrooms        int      `json:"bedrooms"`
	Bathrooms       int      `json:"bathrooms"`
	Capacity        int      `json:"capacity"`
	ProvinceCode    *int     `json:"province_code"`
	WardCode        *int     `json:"ward_code"`
	ShowPhoneNumber *bool    `json:"show_phone_number"`
	AmenityIDs      []string `json:"amenities"`
}

// updateBody is the "data" payload for updates and edit drafts.
type updateBody struct {
	Fields    map[string]interface{} `json:"fields"`
	Amenities *[]string              `json:"amenities"`
}

func parseUpdateInput(c *gin.Context) (UpdateInput, bool) {
	var body updateBody
	if raw := c.PostForm("data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed data payload"})
			return UpdateInput{}, false
		}
	}

	imgs, err := readImages(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return UpdateInput{}, false
	}

	in := UpdateInput{
		Fields:     body.Fields,
		Images:     imgs,
		CoverIndex: coverIndex(c),
	}
	if body.Amenities != nil {
		in.HasAmenities = true
		in.AmenityIDs = *body.Amenities
	}
	return in, true
}

// PUT /listings/:id
func UpdateListing(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	in, ok := parseUpdateInput(c)
	if !ok {
		return
	}

	listing, err := svc.Update(c.Request.Context(), c.Param("id"), userID, in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": listing})
}

// POST /listings/:id/submit
func SubmitDraftListing(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	listing, err := svc.SubmitDraft(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": listing})
}

// POST /listings/:id/edit-draft
func CreateEditDraft(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	in, ok := parseUpdateInput(c)
	if !ok {
		return
	}

	draft, err := svc.CreateEditDraft(c.Request.Context(), c.Param("id"), userID, in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": draft})
}

// POST /listings/:id/hide
func HideListing(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	listing, err := svc.Hide(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": listing})
}

// POST /listings/:id/show
func ShowListing(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	listing, err := svc.Show(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": listing})
}

// POST /listings/:id/renew
func RenewListing(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	listing, err := svc.Renew(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": listing})
}

// DELETE /listings/:id
func SoftDeleteListing(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := svc.SoftDelete(c.Request.Context(), c.Param("id"), userID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /my-listings
func GetMyListings(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	rows, pagination, err := svc.ListByOwner(userID, page, limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows, "pagination": pagination})
}

// GET /listings
func SearchListings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	minPrice, _ := strconv.ParseFloat(c.Query("min_price"), 64)
	maxPrice, _ := strconv.ParseFloat(c.Query("max_price"), 64)
	bedrooms, _ := strconv.Atoi(c.Query("bedrooms"))
	provinceCode, _ := strconv.Atoi(c.Query("province_code"))
	wardCode, _ := strconv.Atoi(c.Query("ward_code"))

	filter := SearchFilter{
		Page:            page,
		Limit:           limit,
		Keyword:         c.Query("keyword"),
		ProvinceCode:    provinceCode,
		WardCode:        wardCode,
		ListingTypeCode: c.Query("listing_type_code"),
		MinPrice:        minPrice,
		MaxPrice:        maxPrice,
		Bedrooms:        bedrooms,
	}
	if raw := c.Query("amenities"); raw != "" {
		filter.AmenityIDs = strings.Split(raw, ",")
	}

	result, err := svc.Search(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result.Listings, "pagination": result.Pagination})
}

// GET /listings/:id
func GetListingByID(c *gin.Context) {
	listing, err := svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	viewerKey := c.GetString("user_id")
	if viewerKey == "" {
		viewerKey = c.ClientIP()
	}
	svc.RecordView(c.Request.Context(), listing.ID, viewerKey)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": listing})
}
