package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/junaidrashid-git/marinetex-api/controllers/order"
	productcontroller "github.com/junaidrashid-git/marinetex-api/controllers/product"
	settingsControllers "github.com/junaidrashid-git/marinetex-api/controllers/settings"
	userControllers "github.com/junaidrashid-git/marinetex-api/controllers/user"
	"github.com/junaidrashid-git/marinetex-api/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-Key middleware.
func SetupAdminRoutes(r *gin.Engine, app *App) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey(app.Config.AdminAPIKey))
	{
		// ─────────── User Management ───────────
		adminGroup.GET("/users", userControllers.GetAllUsers(app.DB))

		// ─────────── Orders ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(app.Orders))
			orderAdmin.GET("/ws", app.Hub.OrderWebSocketHandler)
			orderAdmin.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(app.Orders))
			orderAdmin.PUT("/:orderID/payment-status", orderControllers.UpdatePaymentStatusHandler(app.Orders))
			orderAdmin.DELETE("/:orderID", orderControllers.DeleteOrderHandler(app.Orders))
		}

		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productcontroller.CreateProduct(app.DB))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(app.DB))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(app.DB))
			productAdmin.POST("/import-excel", productcontroller.ImportProductsFromExcel(app.DB))
			productAdmin.GET("/export-excel", productcontroller.ExportProductsToExcel(app.DB))
		}

		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", productcontroller.CreateCategory(app.DB))
			categoryAdmin.PUT("/:id", productcontroller.UpdateCategory(app.DB))
			categoryAdmin.DELETE("/:id", productcontroller.DeleteCategory(app.DB))
		}

		// ─────────── Settings ───────────
		adminGroup.GET("/settings/shipping", settingsControllers.GetShippingSettings(app.Orders.Shipping))
		adminGroup.PUT("/settings/shipping", settingsControllers.UpdateShippingSettings(app.Settings))
	}
}
