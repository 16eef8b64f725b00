package productcontroller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/junaidrashid-git/marinetex-api/models"
	"github.com/junaidrashid-git/marinetex-api/pricing"
)

// ProductView is a product as the storefront shows it in one language.
type ProductView struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	EmbroideryPrice decimal.Decimal `json:"embroideryPrice"`
	Currency        string          `json:"currency"`
	Sizes           []string        `json:"sizes"`
	Colors          []string        `json:"colors"`
	Image           string          `json:"image"`
	InStock         bool            `json:"inStock"`
	Categories      []CategoryView  `json:"categories"`
}

type CategoryView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

func langParam(c *gin.Context) (lang, currency string, ok bool) {
	lang = c.DefaultQuery("lang", models.LangTR)
	currency, err := pricing.CurrencyFor(lang)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lang must be tr or en"})
		return "", "", false
	}
	return lang, currency, true
}

func categoryView(cat models.Category, lang string) CategoryView {
	return CategoryView{ID: cat.ID, Name: cat.Name(lang), Image: cat.Image}
}

func productView(p models.Product, lang, currency string, rate decimal.Decimal) ProductView {
	cats := make([]CategoryView, 0, len(p.Categories))
	for _, cat := range p.Categories {
		cats = append(cats, categoryView(cat, lang))
	}
	sizes, colors := p.Sizes, p.Colors
	if sizes == nil {
		sizes = []string{}
	}
	if colors == nil {
		colors = []string{}
	}
	return ProductView{
		ID:              p.ID,
		Name:            p.Name(lang),
		Description:     p.Description(lang),
		Price:           pricing.ConvertWithRate(p.Price, rate, lang),
		EmbroideryPrice: pricing.ConvertWithRate(p.EmbroideryPrice, rate, lang),
		Currency:        currency,
		Sizes:           sizes,
		Colors:          colors,
		Image:           p.Image,
		InStock:         p.Stock > 0,
		Categories:      cats,
	}
}

// rateFor only consults the converter when lang needs a conversion.
func rateFor(ctx context.Context, conv *pricing.Converter, lang string) decimal.Decimal {
	if lang != models.LangEN {
		return decimal.NewFromInt(1)
	}
	return conv.Rate(ctx)
}
