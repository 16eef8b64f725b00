package cartControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/cart"
	"github.com/junaidrashid-git/marinetex-api/middleware"
	"github.com/junaidrashid-git/marinetex-api/models"
	"github.com/junaidrashid-git/marinetex-api/pricing"
)

type Handler struct {
	DB        *gorm.DB
	Carts     *cart.Service
	Converter *pricing.Converter
	Log       *zap.Logger
}

type CartItemInput struct {
	ProductID       uint   `json:"productId" binding:"required"`
	Size            string `json:"size"`
	Color           string `json:"color"`
	Embroidery      bool   `json:"embroidery"`
	EmbroideryAsset string `json:"embroideryAsset"`
}

type QuantityInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type LanguageInput struct {
	Language string `json:"language" binding:"required,oneof=tr en"`
}

type cartView struct {
	*cart.Cart
	Currency   string          `json:"currency"`
	ItemsTotal decimal.Decimal `json:"itemsTotal"`
	TotalItems int             `json:"totalItems"`
}

func view(c *cart.Cart) cartView {
	currency, err := pricing.CurrencyFor(c.Language)
	if err != nil {
		currency = pricing.CurrencyTRY
	}
	return cartView{Cart: c, Currency: currency, ItemsTotal: c.TotalPrice(), TotalItems: c.TotalItems()}
}

// cartID returns the :cartID param if the caller may touch it.
func cartID(c *gin.Context) (string, bool) {
	id := c.Param("cartID")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cartID is required"})
		return "", false
	}
	uid, _ := middleware.AuthenticatedUserID(c)
	if !cart.OwnedBy(id, uid) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your cart"})
		return "", false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.Log.Error("cart store failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Cart is unavailable"})
}

// GET /cart/:cartID
func (h *Handler) GetCart(c *gin.Context) {
	id, ok := cartID(c)
	if !ok {
		return
	}
	crt, err := h.Carts.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view(crt))
}

// POST /cart/:cartID/items
//
// The line is priced from the catalog in the cart's language.
func (h *Handler) AddCartItem(c *gin.Context) {
	id, ok := cartID(c)
	if !ok {
		return
	}
	var input CartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	var product models.Product
	if err := h.DB.WithContext(ctx).Where("active = ?", true).First(&product, input.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product does not exist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate product"})
		return
	}
	if product.Stock <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product is out of stock"})
		return
	}
	if !product.OffersSize(input.Size) || !product.OffersColor(input.Color) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Size or color is not offered for this product"})
		return
	}

	current, err := h.Carts.Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	lang := current.Language

	sel := cart.Selection{
		ProductID:           product.ID,
		Name:                product.Name(lang),
		Image:               product.Image,
		Size:                input.Size,
		Color:               input.Color,
		Embroidery:          input.Embroidery,
		EmbroideryAsset:     input.EmbroideryAsset,
		UnitPrice:           h.Converter.Convert(ctx, product.Price, lang),
		EmbroiderySurcharge: decimal.Zero,
	}
	if input.Embroidery {
		sel.EmbroiderySurcharge = h.Converter.Convert(ctx, product.EmbroideryPrice, lang)
	}

	crt, err := h.Carts.AddItem(ctx, id, sel)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view(crt))
}

// PUT /cart/:cartID/items/:key
func (h *Handler) UpdateCartItem(c *gin.Context) {
	id, ok := cartID(c)
	if !ok {
		return
	}
	var input QuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	crt, err := h.Carts.UpdateQuantity(c.Request.Context(), id, c.Param("key"), *input.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view(crt))
}

// DELETE /cart/:cartID/items/:key
func (h *Handler) RemoveCartItem(c *gin.Context) {
	id, ok := cartID(c)
	if !ok {
		return
	}
	crt, err := h.Carts.RemoveItem(c.Request.Context(), id, c.Param("key"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view(crt))
}

// PUT /cart/:cartID/language
func (h *Handler) SwitchLanguage(c *gin.Context) {
	id, ok := cartID(c)
	if !ok {
		return
	}
	var input LanguageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "language must be tr or en"})
		return
	}
	crt, err := h.Carts.SwitchLanguage(c.Request.Context(), id, input.Language)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view(crt))
}

// DELETE /cart/:cartID
func (h *Handler) ClearCart(c *gin.Context) {
	id, ok := cartID(c)
	if !ok {
		return
	}
	if err := h.Carts.Clear(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
