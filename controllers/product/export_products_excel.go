package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/models"
)

func productRow(p models.Product) []string {
	catIDs := make([]string, 0, len(p.Categories))
	for _, cat := range p.Categories {
		catIDs = append(catIDs, strconv.FormatUint(uint64(cat.ID), 10))
	}
	return []string{
		strconv.FormatUint(uint64(p.ID), 10),
		p.NameTR,
		p.NameEN,
		p.DescriptionTR,
		p.DescriptionEN,
		p.Price.StringFixed(2),
		p.EmbroideryPrice.StringFixed(2),
		strings.Join(p.Sizes, ","),
		strings.Join(p.Colors, ","),
		strconv.Itoa(p.Stock),
		p.Image,
		strings.Join(catIDs, ","),
		strconv.FormatBool(p.Active),
	}
}

func ExportProductsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.WithContext(c.Request.Context()).Preload("Categories").Order("id").Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Products")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headerRow := sheet.AddRow()
		for _, h := range excelHeaders {
			headerRow.AddCell().SetString(h)
		}
		for _, p := range products {
			row := sheet.AddRow()
			for _, v := range productRow(p) {
				row.AddCell().SetString(v)
			}
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
