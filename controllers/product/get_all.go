package productcontroller

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/models"
	"github.com/junaidrashid-git/marinetex-api/pricing"
)

var sortColumns = map[string]string{
	"created_at": "products.created_at",
	"price":      "products.price",
	"name":       "products.name_tr",
	"stock":      "products.stock",
}

// GetProducts lists active products. min_price and max_price are in the
// currency of lang.
func GetProducts(db *gorm.DB, conv *pricing.Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang, currency, ok := langParam(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		rate := rateFor(ctx, conv, lang)

		search := strings.TrimSpace(c.Query("search"))
		categoryID := c.Query("category_id")
		sortBy := c.DefaultQuery("sort_by", "created_at")
		sortOrder := strings.ToLower(c.DefaultQuery("order", "desc"))
		if sortOrder != "asc" && sortOrder != "desc" {
			sortOrder = "desc"
		}
		column, ok := sortColumns[sortBy]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort_by"})
			return
		}
		if sortBy == "name" && lang == models.LangEN {
			column = "products.name_en"
		}

		query := db.WithContext(ctx).Model(&models.Product{}).
			Preload("Categories").
			Where("products.active = ?", true)

		if search != "" {
			like := "%" + strings.ToLower(search) + "%"
			query = query.Where(
				"LOWER(products.name_tr) LIKE ? OR LOWER(products.name_en) LIKE ? OR LOWER(products.description_tr) LIKE ? OR LOWER(products.description_en) LIKE ?",
				like, like, like, like)
		}

		for _, bound := range []struct{ param, op string }{{"min_price", ">="}, {"max_price", "<="}} {
			raw := c.Query(bound.param)
			if raw == "" {
				continue
			}
			v, err := decimal.NewFromString(raw)
			if err != nil || v.IsNegative() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + bound.param})
				return
			}
			op, tryBound := catalogBound(bound.op, v, rate, lang)
			query = query.Where("products.price "+op+" ?", tryBound)
		}

		if categoryID != "" {
			cid, err := strconv.ParseUint(categoryID, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
				return
			}
			query = query.
				Joins("JOIN product_categories pc ON pc.product_id = products.id").
				Where("pc.category_id = ?", uint(cid))
		}

		var products []models.Product
		if err := query.Order(fmt.Sprintf("%s %s", column, sortOrder)).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		views := make([]ProductView, 0, len(products))
		for _, p := range products {
			views = append(views, productView(p, lang, currency, rate))
		}
		c.JSON(http.StatusOK, views)
	}
}

// halfCent is the widest gap between a converted price and its display.
var halfCent = decimal.RequireFromString("0.005")

// catalogBound turns a display-currency price bound into one on the TRY
// catalog price. For en it matches the rounded price the list shows: a
// product displayed at exactly the bound is included.
func catalogBound(op string, v, rate decimal.Decimal, lang string) (string, decimal.Decimal) {
	if lang != models.LangEN {
		return op, v
	}
	if op == ">=" {
		return ">=", v.Sub(halfCent).Div(rate)
	}
	return "<", v.Add(halfCent).Div(rate)
}
