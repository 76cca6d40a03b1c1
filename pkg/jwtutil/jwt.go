package jwtutil

import (
	"time"

	"church-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

var (
	signingKey = []byte("churchservicesecretkey")
	expiration = 24 * time.Hour
)

// Initialize configures the signing key and token lifetime from config.
func Initialize(cfg *config.JWTConfig) {
	if cfg.SigningKey != "" {
		signingKey = []byte(cfg.SigningKey)
	}
	if cfg.ExpirationHours > 0 {
		expiration = time.Duration(cfg.ExpirationHours) * time.Hour
	}
}

// UserClaims represents the JWT claims for an authenticated user
type UserClaims struct {
	Email      string `json:"email"`
	UserID     uint   `json:"user_id"`
	Role       string `json:"role,omitempty"`
	ChurchID   *uint  `json:"church_id,omitempty"`
	ChurchName string `json:"church_name,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a JWT token with user and church information
func GenerateToken(email string, userID uint, role string, churchID *uint, churchName string) (string, error) {
	claims := UserClaims{
		Email:      email,
		UserID:     userID,
		Role:       role,
		ChurchID:   churchID,
		ChurchName: churchName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
