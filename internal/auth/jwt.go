package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"parkhub/internal/apperr"
	"parkhub/internal/db"
)

const tokenTTL = time.Hour

// Claims is the verified identity the request layer hands to the core. Core
// operations trust it; role checks happen before they are called.
type Claims struct {
	UserID   int
	Username string
	Role     string
}

// GenerateToken issues an HS256 token for the user, valid for one hour.
func GenerateToken(secret string, user *db.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry and extracts the claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.New(apperr.Unauthorized, "unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.New(apperr.Unauthorized, "invalid or expired token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.New(apperr.Unauthorized, "invalid token claims")
	}
	userID, ok := mapClaims["user_id"].(float64)
	if !ok {
		return nil, apperr.New(apperr.Unauthorized, "invalid token claims")
	}
	username, _ := mapClaims["username"].(string)
	role, _ := mapClaims["role"].(string)

	return &Claims{UserID: int(userID), Username: username, Role: role}, nil
}
