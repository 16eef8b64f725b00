package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/junaidrashid-git/marinetex-api/controllers/order"
	"github.com/junaidrashid-git/marinetex-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, app *App) {
	orders := r.Group("/orders")
	orders.Use(middleware.OptionalToken(app.Config.JWTSecret))
	{
		// Guest checkout is allowed; a user token links the order to the account
		orders.POST("", orderControllers.PlaceOrderHandler(app.Orders))

		// Order confirmation / tracking page
		orders.GET("/:ref", orderControllers.GetOrderByRefHandler(app.Orders))
	}
}
