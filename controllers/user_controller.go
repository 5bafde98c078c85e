package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gabrielmaialva33/giftcard-platform-api/config"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/gin-gonic/gin"
)

// CreateUserRequest represents the admin user creation body
type CreateUserRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	Role            string `json:"role" binding:"required"`
	FranchiseID     *uint  `json:"franchise_id"`
	EstablishmentID *uint  `json:"establishment_id"`
}

// CreateUser provisions a platform user. Franchise users must reference an
// existing franchise, establishment users an existing establishment; the
// franchise scope is derived from the establishment.
func CreateUser(c *gin.Context) {
	utils.LogInfo("CreateUser called")

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid user request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	if valid, msg := utils.ValidateName(req.Name); !valid {
		utils.BadRequest(c, msg, nil)
		return
	}
	if valid, msg := utils.ValidatePassword(req.Password); !valid {
		utils.BadRequest(c, msg, nil)
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Role:     req.Role,
		IsActive: true,
	}

	switch req.Role {
	case models.RoleAdmin:
		// Admins carry no scope.
	case models.RoleFranchise:
		if req.FranchiseID == nil {
			utils.BadRequest(c, "franchise_id is required for franchise users", nil)
			return
		}
		var franchise models.Franchise
		if err := config.DB.First(&franchise, *req.FranchiseID).Error; err != nil {
			utils.NotFound(c, "Franchise not found")
			return
		}
		user.FranchiseID = &franchise.ID
	case models.RoleEstablishment:
		if req.EstablishmentID == nil {
			utils.BadRequest(c, "establishment_id is required for establishment users", nil)
			return
		}
		var establishment models.Establishment
		if err := config.DB.First(&establishment, *req.EstablishmentID).Error; err != nil {
			utils.NotFound(c, "Establishment not found")
			return
		}
		user.EstablishmentID = &establishment.ID
		user.FranchiseID = &establishment.FranchiseID
	default:
		utils.BadRequest(c, "Invalid role", gin.H{"allowed": []string{
			models.RoleAdmin, models.RoleFranchise, models.RoleEstablishment,
		}})
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.LogError("Password hash failed: %v", err)
		utils.InternalServerError(c, "Failed to create user", nil)
		return
	}
	user.Password = hashed

	if err := config.DB.Create(&user).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") || strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			utils.Conflict(c, "A user with this email already exists", nil)
			return
		}
		utils.LogError("Failed to create user: %v", err)
		utils.InternalServerError(c, "Failed to create user", nil)
		return
	}

	utils.LogInfo("User created: %s (%s)", user.Email, user.Role)
	utils.Created(c, "User created", gin.H{"user": user})
}

// ListUsers returns platform users with search and pagination
func ListUsers(c *gin.Context) {
	utils.LogInfo("ListUsers called")

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.User{})

	if search := c.Query("search"); search != "" {
		term := "%" + search + "%"
		query = query.Where("email ILIKE ? OR name ILIKE ?", term, term)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	query.Count(&total)
	pagination.SetTotal(total)

	var users []models.User
	if err := query.Order("id DESC").Offset(pagination.Offset).Limit(pagination.Limit).Find(&users).Error; err != nil {
		utils.LogError("Failed to fetch users: %v", err)
		utils.InternalServerError(c, "Failed to fetch users", nil)
		return
	}

	utils.SendPaginatedResponse(c, users, pagination)
}

// ToggleUserActive enables or disables a user account
func ToggleUserActive(c *gin.Context) {
	utils.LogInfo("ToggleUserActive called")

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	newStatus := !user.IsActive
	action := "disabled"
	if newStatus {
		action = "enabled"
	}

	updates := map[string]interface{}{
		"is_active":  newStatus,
		"updated_at": time.Now(),
	}
	if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update user status: %v", err)
		utils.InternalServerError(c, "Failed to update user status", nil)
		return
	}

	utils.LogInfo("User %s %s", user.Email, action)
	utils.Success(c, fmt.Sprintf("User %s successfully", action), gin.H{
		"user": gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"is_active": newStatus,
		},
	})
}
