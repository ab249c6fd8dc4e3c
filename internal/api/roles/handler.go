package roles

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var svc *Service

func Init(s *Service) {
	svc = s
}

// GET /admin/roles
// A "keyword" query switches from the cached full list to a live search.
func List(c *gin.Context) {
	if keyword := c.Query("keyword"); keyword != "" {
		rows, err := svc.Search(keyword)
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

// GET /admin/roles/:id
func GetByID(c *gin.Context) {
	r, err := svc.GetByID(c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": r})
}

type roleBody struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// POST /admin/roles
func Create(c *gin.Context) {
	var body roleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := svc.Create(c.Request.Context(), body.Code, body.Name)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": r})
}

// PUT /admin/roles/:id
func Update(c *gin.Context) {
	var body roleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := svc.Update(c.Request.Context(), c.Param("id"), body.Code, body.Name)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": r})
}

// DELETE /admin/roles/:id
func Delete(c *gin.Context) {
	if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
