package listingtypes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var svc *Service

func Init(s *Service) {
	svc = s
}

// GET /listing-types
func List(c *gin.Context) {
	rows, err := svc.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
}

type createBody struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// POST /listing-types (admin)
func Create(c *gin.Context) {
	var body createBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lt, err := svc.Create(c.Request.Context(), body.Code, body.Name)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": lt})
}

type updateBody struct {
	Name string `json:"name" binding:"required"`
}

// PUT /listing-types/:id (admin)
func Update(c *gin.Context) {
	var body updateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lt, err := svc.Update(c.Request.Context(), c.Param("id"), body.Name)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": lt})
}

// DELETE /listing-types/:id (admin)
func Delete(c *gin.Context) {
	if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
