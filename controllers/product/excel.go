package productcontroller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/models"
)

// Column order shared by import and export.
var excelHeaders = []string{
	"ID", "NameTR", "NameEN", "DescriptionTR", "DescriptionEN",
	"Price", "EmbroideryPrice", "Sizes", "Colors", "Stock",
	"Image", "CategoryIDs", "Active",
}

func splitCell(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseProductRow reads one sheet row. id is 0 for new products.
func parseProductRow(cells []string) (id uint, p models.Product, categoryIDs []uint, err error) {
	get := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	if raw := get(0); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, p, nil, fmt.Errorf("invalid id %q", raw)
		}
		id = uint(n)
	}

	p.NameTR = get(1)
	if p.NameTR == "" {
		return 0, p, nil, errors.New("NameTR is required")
	}
	p.NameEN = get(2)
	p.DescriptionTR = get(3)
	p.DescriptionEN = get(4)

	if p.Price, err = decimal.NewFromString(get(5)); err != nil || !p.Price.IsPositive() {
		return 0, p, nil, fmt.Errorf("invalid price %q", get(5))
	}
	p.EmbroideryPrice = decimal.Zero
	if raw := get(6); raw != "" {
		if p.EmbroideryPrice, err = decimal.NewFromString(raw); err != nil || p.EmbroideryPrice.IsNegative() {
			return 0, p, nil, fmt.Errorf("invalid embroidery price %q", raw)
		}
	}
	p.Sizes = splitCell(get(7))
	p.Colors = splitCell(get(8))
	if raw := get(9); raw != "" {
		stock, err := strconv.ParseFloat(raw, 64)
		if err != nil || stock < 0 {
			return 0, p, nil, fmt.Errorf("invalid stock %q", raw)
		}
		p.Stock = int(stock)
	}
	p.Image = get(10)
	for _, part := range splitCell(get(11)) {
		if cid, err := strconv.ParseUint(part, 10, 64); err == nil {
			categoryIDs = append(categoryIDs, uint(cid))
		}
	}
	p.Active = !strings.EqualFold(get(12), "false") && get(12) != "0"
	return id, p, categoryIDs, nil
}

func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}
		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse Excel file"})
			return
		}
		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		db := db.WithContext(c.Request.Context())
		sheet := xlFile.Sheets[0]
		createdCount, updatedCount := 0, 0
		skipped := []gin.H{}

		for i := 1; i < len(sheet.Rows); i++ {
			cells := make([]string, 0, len(excelHeaders))
			for _, cell := range sheet.Rows[i].Cells {
				cells = append(cells, cell.String())
			}
			if strings.TrimSpace(strings.Join(cells, "")) == "" {
				continue
			}

			id, row, categoryIDs, err := parseProductRow(cells)
			if err != nil {
				skipped = append(skipped, gin.H{"row": i + 1, "reason": err.Error()})
				continue
			}
			categories, err := loadCategories(db, categoryIDs)
			if err != nil {
				skipped = append(skipped, gin.H{"row": i + 1, "reason": "categories unavailable"})
				continue
			}

			updated, err := upsertProduct(db, id, row, categories)
			switch {
			case err != nil:
				skipped = append(skipped, gin.H{"row": i + 1, "reason": err.Error()})
			case updated:
				updatedCount++
			default:
				createdCount++
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": createdCount,
			"updated_count": updatedCount,
			"skipped_count": len(skipped),
			"skipped":       skipped,
		})
	}
}

// upsertProduct updates product id when it exists, otherwise inserts row.
func upsertProduct(db *gorm.DB, id uint, row models.Product, categories []models.Category) (updated bool, err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing models.Product
		if id != 0 {
			err := tx.First(&existing, id).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			updated = err == nil
		}

		if updated {
			row.ID, row.CreatedAt = existing.ID, existing.CreatedAt
			if err := tx.Omit("Categories").Save(&row).Error; err != nil {
				return err
			}
			return tx.Model(&row).Association("Categories").Replace(categories)
		}

		active := row.Active
		row.Categories = categories
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if !active {
			return tx.Model(&row).Update("active", false).Error
		}
		return nil
	})
	return updated, err
}
