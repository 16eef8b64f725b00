package productcontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/models"
)

type CategoryInput struct {
	NameTR string `json:"nameTr" binding:"required"`
	NameEN string `json:"nameEn" binding:"required"`
	Image  string `json:"image"`
}

// GET /categories?lang=
func GetCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang, _, ok := langParam(c)
		if !ok {
			return
		}
		var categories []models.Category
		if err := db.WithContext(c.Request.Context()).Order("id").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		views := make([]CategoryView, 0, len(categories))
		for _, cat := range categories {
			views = append(views, categoryView(cat, lang))
		}
		c.JSON(http.StatusOK, views)
	}
}

func CreateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nameTr and nameEn are required"})
			return
		}
		category := models.Category{NameTR: input.NameTR, NameEN: input.NameEN, Image: input.Image}
		if err := db.WithContext(c.Request.Context()).Create(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

func findCategory(c *gin.Context, db *gorm.DB) (*models.Category, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return nil, false
	}
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve category"})
		}
		return nil, false
	}
	return &category, true
}

func UpdateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := db.WithContext(c.Request.Context())
		category, ok := findCategory(c, db)
		if !ok {
			return
		}
		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nameTr and nameEn are required"})
			return
		}
		category.NameTR, category.NameEN = input.NameTR, input.NameEN
		if input.Image != "" {
			category.Image = input.Image
		}
		if err := db.Save(category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

func DeleteCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := db.WithContext(c.Request.Context())
		category, ok := findCategory(c, db)
		if !ok {
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(category).Association("Products").Clear(); err != nil {
				return err
			}
			return tx.Delete(category).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}
