package utils

import (
	"errors"
	"os"
	"time"

	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a password against a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// TokenClaims carries the identity and scope extracted from a validated token
type TokenClaims struct {
	UserID          uint
	Role            string
	FranchiseID     *uint
	EstablishmentID *uint
	ExpiresAt       time.Time
}

// GenerateToken creates a JWT token for a user
func GenerateToken(user *models.User) (string, error) {
	// Create the token
	token := jwt.New(jwt.SigningMethodHS256)

	// Set claims
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = user.ID
	claims["email"] = user.Email
	claims["role"] = user.Role
	if user.FranchiseID != nil {
		claims["franchise_id"] = *user.FranchiseID
	}
	if user.EstablishmentID != nil {
		claims["establishment_id"] = *user.EstablishmentID
	}
	claims["exp"] = time.Now().Add(time.Hour * 24).Unix() // 24 hour expiration

	// Generate encoded token
	tokenString, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns its claims
func ValidateToken(tokenString string) (*TokenClaims, error) {
	// Parse the token
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil {
		return nil, err
	}

	// Check if the token is valid
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, errors.New("invalid user ID in token")
	}

	role, _ := claims["role"].(string)

	result := &TokenClaims{
		UserID: uint(userID),
		Role:   role,
	}
	if franchiseID, ok := claims["franchise_id"].(float64); ok {
		id := uint(franchiseID)
		result.FranchiseID = &id
	}
	if establishmentID, ok := claims["establishment_id"].(float64); ok {
		id := uint(establishmentID)
		result.EstablishmentID = &id
	}
	if exp, ok := claims["exp"].(float64); ok {
		result.ExpiresAt = time.Unix(int64(exp), 0)
	}

	return result, nil
}
