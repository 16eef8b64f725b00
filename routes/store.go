package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/junaidrashid-git/marinetex-api/controllers/cart"
	productcontroller "github.com/junaidrashid-git/marinetex-api/controllers/product"
	settingsControllers "github.com/junaidrashid-git/marinetex-api/controllers/settings"
	"github.com/junaidrashid-git/marinetex-api/middleware"
)

// SetupStoreRoutes registers the public catalog and cart endpoints.
func SetupStoreRoutes(r *gin.Engine, app *App) {
	conv := app.Orders.Converter

	r.GET("/products", productcontroller.GetProducts(app.DB, conv))
	r.GET("/products/:id", productcontroller.GetProductByID(app.DB, conv))
	r.GET("/categories", productcontroller.GetCategories(app.DB))
	r.GET("/shipping/quote", settingsControllers.ShippingQuote(app.Orders.Shipping))

	carts := &cartControllers.Handler{DB: app.DB, Carts: app.Carts, Converter: conv, Log: app.Log}
	cartGroup := r.Group("/cart/:cartID")
	cartGroup.Use(middleware.OptionalToken(app.Config.JWTSecret))
	{
		cartGroup.GET("", carts.GetCart)
		cartGroup.DELETE("", carts.ClearCart)
		cartGroup.POST("/items", carts.AddCartItem)
		cartGroup.PUT("/items/:key", carts.UpdateCartItem)
		cartGroup.DELETE("/items/:key", carts.RemoveCartItem)
		cartGroup.PUT("/language", carts.SwitchLanguage)
	}
}
