package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by the token middleware.
const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

const (
	RoleGuest = "guest"
	RoleUser  = "user"
)

var errSigningMethod = errors.New("invalid token signing method")

func parseToken(header, secret string) (jwt.MapClaims, error) {
	tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errSigningMethod
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims jwt.MapClaims) {
	if id, ok := claims["user_id"].(string); ok {
		c.Set(UserIDKey, id)
	}
	if role, ok := claims["role"].(string); ok {
		c.Set(RoleKey, role)
	}
}

// ValidateToken rejects requests without a valid user or guest token.
func ValidateToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}
		claims, err := parseToken(header, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// RequireUser only lets signed-in (non-guest) users through.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleKey) != RoleUser || c.GetString(UserIDKey) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Sign in required"})
			return
		}
		c.Next()
	}
}

// OptionalToken reads the token when one is sent; an invalid token is
// treated as anonymous.
func OptionalToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			if claims, err := parseToken(header, secret); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// AuthenticatedUserID returns the signed-in user's id; guests get false.
func AuthenticatedUserID(c *gin.Context) (string, bool) {
	id := c.GetString(UserIDKey)
	if id == "" || c.GetString(RoleKey) != RoleUser {
		return "", false
	}
	return id, true
}

func ValidateAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-API-KEY")
		if provided == "" {
			// Browsers cannot set headers on a websocket upgrade.
			provided = c.Query("api_key")
		}
		if key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
			return
		}
		c.Next()
	}
}
