package productcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/models"
)

// ProductInput is the admin create/update body. Prices are TRY.
type ProductInput struct {
	NameTR          string          `json:"nameTr" binding:"required"`
	NameEN          string          `json:"nameEn"`
	DescriptionTR   string          `json:"descriptionTr"`
	DescriptionEN   string          `json:"descriptionEn"`
	Price           decimal.Decimal `json:"price"`
	EmbroideryPrice decimal.Decimal `json:"embroideryPrice"`
	Sizes           []string        `json:"sizes"`
	Colors          []string        `json:"colors"`
	Image           string          `json:"image"`
	Stock           int             `json:"stock" binding:"gte=0"`
	Active          *bool           `json:"active"`
	CategoryIDs     []uint          `json:"categoryIds"`
}

var errInvalidPrice = errors.New("price must be positive and embroideryPrice must not be negative")

func (in ProductInput) validate() error {
	if !in.Price.IsPositive() || in.EmbroideryPrice.IsNegative() {
		return errInvalidPrice
	}
	return nil
}

func (in ProductInput) apply(p *models.Product) {
	p.NameTR = in.NameTR
	p.NameEN = in.NameEN
	p.DescriptionTR = in.DescriptionTR
	p.DescriptionEN = in.DescriptionEN
	p.Price = in.Price
	p.EmbroideryPrice = in.EmbroideryPrice
	p.Sizes = in.Sizes
	p.Colors = in.Colors
	p.Image = in.Image
	p.Stock = in.Stock
	if in.Active != nil {
		p.Active = *in.Active
	}
}

func loadCategories(db *gorm.DB, ids []uint) ([]models.Category, error) {
	categories := []models.Category{}
	if len(ids) == 0 {
		return categories, nil
	}
	if err := db.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateProduct creates a product and links its categories.
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if err := input.validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		tx := db.WithContext(c.Request.Context())
		categories, err := loadCategories(tx, input.CategoryIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}

		product := models.Product{Active: true, Categories: categories}
		input.apply(&product)

		err = tx.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			// Create ignores an explicit false because of the column default.
			if !product.Active {
				return tx.Model(&product).Update("active", false).Error
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}
