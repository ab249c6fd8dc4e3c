package comments

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

var svc *Service

func Init(s *Service) {
	svc = s
}

// GET /comments/listings/:id
func ListForListing(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	rows, total, err := svc.ListByListing(c.Param("id"), c.GetString("user_id"), page, limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows, "total": total})
}

type commentBody struct {
	Content  string  `json:"content" binding:"required"`
	ParentID *string `json:"parent_id"`
}

// POST /comments/listings/:id
func Create(c *gin.Context) {
	userID := c.GetString("user_id")
	var body commentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := svc.Create(c.Request.Context(), c.Param("id"), userID, body.Content, body.ParentID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": comment})
}

// PUT /comments/:id
func Update(c *gin.Context) {
	userID := c.GetString("user_id")
	var body commentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := svc.Update(c.Request.Context(), c.Param("id"), userID, body.Content)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": comment})
}

// DELETE /comments/:id
func Delete(c *gin.Context) {
	userID := c.GetString("user_id")
	if err := svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /comments/:id/likes
func ToggleLike(c *gin.Context) {
	userID := c.GetString("user_id")
	liked, err := svc.ToggleLike(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "liked": liked})
}
