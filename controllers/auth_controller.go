package controllers

import (
	"time"

	"github.com/gabrielmaialva33/giftcard-platform-api/config"
	"github.com/gabrielmaialva33/giftcard-platform-api/middleware"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/gin-gonic/gin"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a user and returns a bearer token
func Login(c *gin.Context) {
	utils.LogInfo("Login called")
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid login request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.LogError("User not found for email: %s", req.Email)
		utils.Unauthorized(c, utils.ErrInvalidCredentials)
		return
	}

	if !user.IsActive {
		utils.LogError("Disabled account attempted login: %s", user.Email)
		utils.Forbidden(c, utils.ErrUserBlocked)
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		utils.LogError("Invalid password for user: %s", user.Email)
		utils.Unauthorized(c, utils.ErrInvalidCredentials)
		return
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.LogError("Failed to generate token for user %s: %v", user.Email, err)
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}

	// Update last login
	now := time.Now()
	if err := config.DB.Model(&user).Update("last_login_at", now).Error; err != nil {
		utils.LogError("Failed to update last login for user %s: %v", user.Email, err)
	}

	utils.LogInfo("Login successful: %s (%s)", user.Email, user.Role)
	utils.Success(c, utils.MsgLoginSuccess, gin.H{
		"token": token,
		"user": gin.H{
			"id":               user.ID,
			"name":             user.Name,
			"email":            user.Email,
			"role":             user.Role,
			"franchise_id":     user.FranchiseID,
			"establishment_id": user.EstablishmentID,
		},
	})
}

// Logout blacklists the current token until its natural expiry
func Logout(c *gin.Context) {
	utils.LogInfo("Logout called")

	value, exists := c.Get("token")
	if !exists {
		utils.Unauthorized(c, utils.ErrUnauthorized)
		return
	}
	tokenString, _ := value.(string)

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		utils.Unauthorized(c, utils.ErrInvalidToken)
		return
	}

	entry := models.BlacklistedToken{
		Token:     tokenString,
		ExpiresAt: claims.ExpiresAt,
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		// A second logout with the same token hits the unique index; the
		// token is already dead, so report success
		utils.LogDebug("Token already blacklisted for user ID: %d", claims.UserID)
	}

	utils.LogInfo("User %d logged out", claims.UserID)
	utils.Success(c, utils.MsgLogoutSuccess, nil)
}

// Me returns the authenticated user's profile
func Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Unauthorized(c, utils.ErrUnauthorized)
		return
	}

	utils.Success(c, "Profile retrieved", gin.H{
		"id":               user.ID,
		"name":             user.Name,
		"email":            user.Email,
		"role":             user.Role,
		"franchise_id":     user.FranchiseID,
		"establishment_id": user.EstablishmentID,
		"last_login_at":    user.LastLoginAt,
	})
}
