package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/junaidrashid-git/marinetex-api/controllers/order"
	userControllers "github.com/junaidrashid-git/marinetex-api/controllers/user"
	"github.com/junaidrashid-git/marinetex-api/middleware"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires a signed-in user token.
func SetupUserRoutes(r *gin.Engine, app *App) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken(app.Config.JWTSecret), middleware.RequireUser())
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("/", userControllers.GetUser(app.DB))
		userGroup.PUT("/", userControllers.UpdateUser(app.DB))

		userGroup.GET("/orders", orderControllers.GetUserOrdersHandler(app.Orders))

		// ──────────────── Address Book ────────────────
		addresses := userGroup.Group("/addresses")
		{
			addresses.GET("", userControllers.ListAddresses(app.DB))
			addresses.POST("", userControllers.CreateAddress(app.DB))
			addresses.PUT("/:id", userControllers.UpdateAddress(app.DB))
			addresses.DELETE("/:id", userControllers.DeleteAddress(app.DB))
			addresses.PUT("/:id/default", userControllers.SetDefaultAddress(app.DB))
		}
	}
}
