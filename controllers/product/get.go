package productcontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/models"
	"github.com/junaidrashid-git/marinetex-api/pricing"
)

// GetProductByID returns a single active product in the requested language.
// URL param: /products/:id
func GetProductByID(db *gorm.DB, conv *pricing.Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}
		lang, currency, ok := langParam(c)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		var product models.Product
		if err := db.WithContext(ctx).Preload("Categories").Where("active = ?", true).First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
			}
			return
		}
		c.JSON(http.StatusOK, productView(product, lang, currency, rateFor(ctx, conv, lang)))
	}
}
