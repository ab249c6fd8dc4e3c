package amenities

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var svc *Service

func Init(s *Service) {
	svc = s
}

// GET /amenities
// A "name" query switches from the cached full list to a live search.
func List(c *gin.Context) {
	if name := c.Query("name"); name != "" {
		rows, err := svc.Search(name)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
		return
	}

	rows, err := svc.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
}

// GET /amenities/:id
func GetByID(c *gin.Context) {
	a, err := svc.GetByID(c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": a})
}

type amenityBody struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
}

// POST /amenities (admin)
func Create(c *gin.Context) {
	var body amenityBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := svc.Create(c.Request.Context(), body.Name, body.Icon)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": a})
}

// PUT /amenities/:id (admin)
func Update(c *gin.Context) {
	var body amenityBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := svc.Update(c.Request.Context(), c.Param("id"), body.Name, body.Icon)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": a})
}

// DELETE /amenities/:id (admin)
func Delete(c *gin.Context) {
	if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
