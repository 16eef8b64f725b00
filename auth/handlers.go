package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/cart"
	"github.com/junaidrashid-git/marinetex-api/models"
)

// POST /auth/guest
func CreateGuestUser(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		guest := models.GuestUser{
			ID:        cart.GuestPrefix + generateRandomString(16),
			ExpiresAt: time.Now().Add(guestTTL),
		}

		if err := db.WithContext(c.Request.Context()).Create(&guest).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create guest"})
			return
		}

		token, err := issueGuestToken(secret, guest.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"guest_id":   guest.ID,
			"cart_id":    guest.ID,
			"token":      token,
			"expires_at": guest.ExpiresAt,
		})
	}
}

// knownGuest reports whether id is a guest identity this service issued.
// Anything else, a user id in particular, is never merged.
func knownGuest(db *gorm.DB, id string) bool {
	if !cart.IsGuestID(id) {
		return false
	}
	var count int64
	if err := db.Model(&models.GuestUser{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// POST /auth/google-user
//
// A signed-in user's cart id is their user id. A guest cart named in the
// request is folded into it.
func GoogleUserLogin(db *gorm.DB, verifier TokenVerifier, carts *cart.Service, secret string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			IDToken string `json:"idToken" binding:"required"`
			GuestID string `json:"guest_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		ctx := c.Request.Context()
		identity, err := verifier.Verify(ctx, req.IDToken)
		if err != nil {
			log.Warn("id token verification failed", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Firebase ID token"})
			return
		}

		var user models.User
		err = db.WithContext(ctx).Where("id = ?", identity.UID).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				ID:       identity.UID,
				Email:    identity.Email,
				Name:     identity.Name,
				Picture:  identity.Picture,
				Provider: "google",
			}
			if err := db.WithContext(ctx).Create(&user).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
				return
			}
		case err == nil:
			if err := db.WithContext(ctx).Model(&user).Updates(models.User{
				Name:    identity.Name,
				Picture: identity.Picture,
			}).Error; err != nil {
				log.Warn("profile refresh failed", zap.String("user_id", user.ID), zap.Error(err))
			}
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		mergeStatus := "no-guest-cart"
		if knownGuest(db.WithContext(ctx), req.GuestID) {
			merged, err := carts.Merge(ctx, req.GuestID, user.ID)
			switch {
			case err != nil:
				log.Error("guest cart merge failed", zap.String("guest_id", req.GuestID), zap.Error(err))
				mergeStatus = "merge-failed"
			case merged:
				mergeStatus = "merged-success"
			default:
				mergeStatus = "guest-cart-empty"
			}
			if err := db.WithContext(ctx).Delete(&models.GuestUser{}, "id = ?", req.GuestID).Error; err != nil {
				log.Warn("guest cleanup failed", zap.String("guest_id", req.GuestID), zap.Error(err))
			}
		}

		token, err := issueUserToken(secret, *identity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":      "Login successful",
			"merge_status": mergeStatus,
			"user":         user,
			"cart_id":      user.ID,
			"token":        token,
		})
	}
}
