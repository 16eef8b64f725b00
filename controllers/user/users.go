package userControllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/middleware"
	"github.com/junaidrashid-git/marinetex-api/models"
)

// ProfileView is the signed-in user's account page: the user, their address
// book (default first) and how many orders they have placed.
type ProfileView struct {
	models.User
	DefaultAddress *models.Address `json:"defaultAddress"`
	OrderCount     int64           `json:"orderCount"`
}

// ProfileInput changes profile fields and, optionally, the default
// shipping address. Absent fields are left alone.
type ProfileInput struct {
	Name             *string `json:"name" binding:"omitempty,max=120"`
	Phone            *string `json:"phone" binding:"omitempty,max=32"`
	Picture          *string `json:"picture" binding:"omitempty,url"`
	DefaultAddressID *uint   `json:"defaultAddressId"`
}

var errAddressNotOwned = errors.New("address not found")

func loadProfile(db *gorm.DB, userID string) (*ProfileView, error) {
	var view ProfileView
	err := db.Preload("Addresses", func(db *gorm.DB) *gorm.DB {
		return db.Order("is_default desc, id")
	}).First(&view.User, "id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	if view.Addresses == nil {
		view.Addresses = []models.Address{}
	}
	for i := range view.Addresses {
		if view.Addresses[i].IsDefault {
			view.DefaultAddress = &view.Addresses[i]
			break
		}
	}
	if err := db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&view.OrderCount).Error; err != nil {
		return nil, err
	}
	return &view, nil
}

// GET /user
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := loadProfile(db.WithContext(c.Request.Context()), c.GetString(middleware.UserIDKey))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
			}
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// GET /admin/users?search=
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.WithContext(c.Request.Context()).
			Select("id", "email", "name", "phone", "picture", "provider", "created_at")
		if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
			like := "%" + search + "%"
			query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", like, like)
		}

		users := []models.User{}
		if err := query.Order("created_at desc").Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// PUT /user
func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.UserIDKey)
		db := db.WithContext(c.Request.Context())

		var input ProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile: " + err.Error()})
			return
		}
		if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be blank"})
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		updates := map[string]interface{}{}
		if input.Name != nil {
			updates["name"] = strings.TrimSpace(*input.Name)
		}
		if input.Phone != nil {
			updates["phone"] = strings.TrimSpace(*input.Phone)
		}
		if input.Picture != nil {
			updates["picture"] = *input.Picture
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if len(updates) > 0 {
				if err := tx.Model(&user).Updates(updates).Error; err != nil {
					return err
				}
			}
			if input.DefaultAddressID == nil {
				return nil
			}
			var address models.Address
			err := tx.Where("id = ? AND user_id = ?", *input.DefaultAddressID, userID).First(&address).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errAddressNotOwned
			}
			if err != nil {
				return err
			}
			return makeDefault(tx, &address)
		})
		switch {
		case errors.Is(err, errAddressNotOwned):
			c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}

		view, err := loadProfile(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
