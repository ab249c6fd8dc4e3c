package admin

import (
	"net/http"
	"strconv"

	"rental-app/database"
	listingsapi "rental-app/internal/api/listings"

	"github.com/gin-gonic/gin"
)

// The moderation gateway is a thin driver of the listing lifecycle engine;
// the role middleware has already established the admin capability before any
// handler here runs.

var svc *listingsapi.Service

func Init(s *listingsapi.Service) {
	svc = s
}

// GET /admin/listings
func GetModerationQueue(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	rows, pagination, err := ListModerationQueue(database.DB, QueueFilter{
		Page:    page,
		Limit:   limit,
		Status:  c.Query("status"),
		Keyword: c.Query("keyword"),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows, "pagination": pagination})
}

// GET /admin/listings/:id
func GetListingDetail(c *gin.Context) {
	listing, err := svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": listing})
}

// GET /admin/stats
func GetListingStats(c *gin.Context) {
	counts, err := StatusCounts(database.DB)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": counts})
}

// POST /admin/listings/:id/approve
func ApproveListing(c *gin.Context) {
	listing, err := svc.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": listing})
}

type rejectBody struct {
	Reason string `json:"reason"`
}

// POST /admin/listings/:id/reject
func RejectListing(c *gin.Context) {
	var body rejectBody
	_ = c.ShouldBindJSON(&body)

	listing, err := svc.Reject(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": listing})
}

// POST /admin/listings/:id/approve-edit
func ApproveEditDraft(c *gin.Context) {
	parent, err := svc.ApproveEditDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": parent})
}

// POST /admin/listings/:id/reject-edit
func RejectEditDraft(c *gin.Context) {
	var body rejectBody
	_ = c.ShouldBindJSON(&body)

	parent, err := svc.RejectEditDraft(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": parent})
}

// DELETE /admin/listings/:id
func HardDeleteListing(c *gin.Context) {
	if err := svc.HardDelete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
