package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/junaidrashid-git/marinetex-api/middleware"
)

const (
	guestTTL = 24 * time.Hour
	userTTL  = 24 * time.Hour
)

func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "rand_guest"
	}
	return hex.EncodeToString(bytes)
}

func issueToken(secret string, claims jwt.MapClaims, ttl time.Duration) (string, error) {
	claims["exp"] = time.Now().Add(ttl).Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func issueGuestToken(secret, guestID string) (string, error) {
	return issueToken(secret, jwt.MapClaims{
		"user_id": guestID,
		"role":    middleware.RoleGuest,
	}, guestTTL)
}

func issueUserToken(secret string, id Identity) (string, error) {
	return issueToken(secret, jwt.MapClaims{
		"user_id": id.UID,
		"email":   id.Email,
		"role":    middleware.RoleUser,
		"name":    id.Name,
		"picture": id.Picture,
	}, userTTL)
}
