package userControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/middleware"
	"github.com/junaidrashid-git/marinetex-api/models"
)

// AddressInput is the address book body. Title and IsDefault are optional.
type AddressInput struct {
	Title      string `json:"title"`
	FullName   string `json:"fullName" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	District   string `json:"district"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country" binding:"required"`
	IsDefault  bool   `json:"isDefault"`
}

func (in AddressInput) apply(a *models.Address) {
	a.Title = in.Title
	a.FullName = in.FullName
	a.Phone = in.Phone
	a.Email = in.Email
	a.Line1 = in.Line1
	a.Line2 = in.Line2
	a.District = in.District
	a.City = in.City
	a.PostalCode = in.PostalCode
	a.Country = in.Country
}

// makeDefault clears the flag on every other entry of the owner.
func makeDefault(tx *gorm.DB, a *models.Address) error {
	if err := tx.Model(&models.Address{}).
		Where("user_id = ? AND id <> ?", a.UserID, a.ID).
		Update("is_default", false).Error; err != nil {
		return err
	}
	a.IsDefault = true
	return tx.Model(a).Update("is_default", true).Error
}

// findAddress loads :id scoped to the signed-in user. Someone else's
// address answers 404 like a missing one.
func findAddress(c *gin.Context, db *gorm.DB) (*models.Address, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address ID"})
		return nil, false
	}
	var address models.Address
	err = db.Where("id = ? AND user_id = ?", id, c.GetString(middleware.UserIDKey)).First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve address"})
		}
		return nil, false
	}
	return &address, true
}

// GET /user/addresses
func ListAddresses(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		addresses := []models.Address{}
		if err := db.WithContext(c.Request.Context()).
			Where("user_id = ?", c.GetString(middleware.UserIDKey)).
			Order("is_default desc, id").
			Find(&addresses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch addresses"})
			return
		}
		c.JSON(http.StatusOK, addresses)
	}
}

// POST /user/addresses. The first address becomes the default.
func CreateAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AddressInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address: " + err.Error()})
			return
		}
		address := models.Address{UserID: c.GetString(middleware.UserIDKey)}
		input.apply(&address)

		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Address{}).Where("user_id = ?", address.UserID).Count(&count).Error; err != nil {
				return err
			}
			if err := tx.Create(&address).Error; err != nil {
				return err
			}
			if count == 0 || input.IsDefault {
				return makeDefault(tx, &address)
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save address"})
			return
		}
		c.JSON(http.StatusCreated, address)
	}
}

// PUT /user/addresses/:id
func UpdateAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := db.WithContext(c.Request.Context())
		address, ok := findAddress(c, db)
		if !ok {
			return
		}
		var input AddressInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address: " + err.Error()})
			return
		}
		input.apply(address)

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(address).Error; err != nil {
				return err
			}
			if input.IsDefault && !address.IsDefault {
				return makeDefault(tx, address)
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update address"})
			return
		}
		c.JSON(http.StatusOK, address)
	}
}

// PUT /user/addresses/:id/default
func SetDefaultAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := db.WithContext(c.Request.Context())
		address, ok := findAddress(c, db)
		if !ok {
			return
		}
		if err := db.Transaction(func(tx *gorm.DB) error { return makeDefault(tx, address) }); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set default address"})
			return
		}
		c.JSON(http.StatusOK, address)
	}
}

// DELETE /user/addresses/:id. Deleting the default promotes the oldest
// remaining entry.
func DeleteAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := db.WithContext(c.Request.Context())
		address, ok := findAddress(c, db)
		if !ok {
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(address).Error; err != nil {
				return err
			}
			if !address.IsDefault {
				return nil
			}
			var next models.Address
			err := tx.Where("user_id = ?", address.UserID).Order("id").First(&next).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			return makeDefault(tx, &next)
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete address"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Address deleted successfully"})
	}
}
