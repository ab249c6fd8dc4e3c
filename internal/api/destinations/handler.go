package destinations

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

var svc *Service

func Init(s *Service) {
	svc = s
}

// GET /admin/destinations
func List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	rows, pagination, err := svc.Search(SearchFilter{
		Page:    page,
		Limit:   limit,
		Keyword: c.Query("keyword"),
		Type:    c.Query("type"),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows, "pagination": pagination})
}

// GET /admin/destinations/:id
func GetByID(c *gin.Context) {
	d, err := svc.GetByID(c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": d})
}

type createBody struct {
	Name         string  `json:"name" binding:"required"`
	Type         string  `json:"type" binding:"required"`
	Longitude    float64 `json:"longitude"`
	Latitude     float64 `json:"latitude"`
	ProvinceCode *int    `json:"province_code"`
	WardCode     *int    `json:"ward_code"`
}

// POST /admin/destinations
func Create(c *gin.Context) {
	var body createBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := svc.Create(CreateInput{
		Name:         body.Name,
		Type:         body.Type,
		Longitude:    body.Longitude,
		Latitude:     body.Latitude,
		ProvinceCode: body.ProvinceCode,
		WardCode:     body.WardCode,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": d})
}

type updateBody struct {
	Name         *string  `json:"name"`
	Type         *string  `json:"type"`
	Longitude    *float64 `json:"longitude"`
	Latitude     *float64 `json:"latitude"`
	ProvinceCode *int     `json:"province_code"`
	WardCode     *int     `json:"ward_code"`
}

// PUT /admin/destinations/:id
func Update(c *gin.Context) {
	var body updateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := svc.Update(c.Param("id"), UpdateInput(body))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": d})
}

// DELETE /admin/destinations/:id
func Delete(c *gin.Context) {
	if err := svc.Delete(c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /admin/stats/destinations
func Stats(c *gin.Context) {
	stats, err := svc.Stats()
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}
