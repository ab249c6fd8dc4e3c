package users

import (
	"net/http"

	"rental-app/database"
	"rental-app/internal/domain/users"

	"github.com/gin-gonic/gin"
)

// GET /users/me
func Me(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := database.DB.Preload("Role").First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

type updateMeBody struct {
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	Gender      *string `json:"gender"`
	Avatar      *string `json:"avatar"`
}

// PUT /users/me
func UpdateMe(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var body updateMeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user users.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if body.FullName != nil {
		user.FullName = *body.FullName
	}
	if body.PhoneNumber != nil {
		user.PhoneNumber = *body.PhoneNumber
	}
	if body.Gender != nil {
		user.Gender = *body.Gender
	}
	if body.Avatar != nil {
		user.Avatar = *body.Avatar
	}

	if err := database.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// POST /users/me/become-landlord
func BecomeLandlord(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var role users.Role
	if err := database.DB.Where("code = ?", users.RoleLandlord).First(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Landlord role missing"})
		return
	}

	if err := database.DB.Model(&users.User{}).Where("id = ?", userID).
		Update("role_id", role.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "You can now publish listings"})
}
