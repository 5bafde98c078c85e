package controllers

import (
	"github.com/gabrielmaialva33/giftcard-platform-api/config"
	"github.com/gabrielmaialva33/giftcard-platform-api/middleware"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ChangePasswordRequest represents the password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ChangePassword handles password changes. The last three passwords cannot
// be reused.
func ChangePassword(c *gin.Context) {
	utils.LogInfo("ChangePassword called")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Unauthorized(c, utils.ErrUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid password change request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	if !utils.CheckPassword(req.CurrentPassword, user.Password) {
		utils.LogError("Current password verification failed for user ID: %d", user.ID)
		utils.Unauthorized(c, "Current password is incorrect")
		return
	}

	if valid, msg := utils.ValidatePassword(req.NewPassword); !valid {
		utils.BadRequest(c, msg, nil)
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		utils.BadRequest(c, "New password and confirm password do not match", nil)
		return
	}
	if utils.CheckPassword(req.NewPassword, user.Password) {
		utils.BadRequest(c, "New password cannot be the same as current password", nil)
		return
	}

	// Refuse any of the last three passwords
	var history []models.PasswordHistory
	if err := config.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Limit(3).Find(&history).Error; err == nil {
		for _, entry := range history {
			if utils.CheckPassword(req.NewPassword, entry.Password) {
				utils.LogError("Recently used password rejected for user ID: %d", user.ID)
				utils.BadRequest(c, "This password has been used recently", "Choose a password different from your last 3 passwords")
				return
			}
		}
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.LogError("Failed to hash password for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to update password", nil)
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("password", hashed).Error; err != nil {
			return err
		}
		return tx.Create(&models.PasswordHistory{
			UserID:   user.ID,
			Password: hashed,
		}).Error
	})
	if err != nil {
		utils.LogError("Failed to update password for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to update password", nil)
		return
	}

	utils.LogInfo("Password changed for user ID: %d", user.ID)
	utils.Success(c, "Password changed successfully", gin.H{
		"user": gin.H{"id": user.ID},
	})
}
