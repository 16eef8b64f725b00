package routes

import (
	"github.com/gin-gonic/gin"

	telrControllers "github.com/junaidrashid-git/marinetex-api/controllers/telr"
	"github.com/junaidrashid-git/marinetex-api/middleware"
)

func SetupTelrRoutes(r *gin.Engine, app *App) {
	telr := app.Config.Telr
	payment := r.Group("/payment")
	{
		// Hosted checkout session for an existing order
		payment.POST("/:ref/checkout", telrControllers.PaymentRequestHandler(app.Orders, app.Gateway))

		// Webhook endpoint: middleware handles sandbox/prod verification
		payment.POST("/webhook",
			middleware.TelrWebhookAuth(telr.WebhookSecret, telr.TestMode(), app.Log),
			telrControllers.TelrWebhookHandler(app.Orders),
		)
	}
}
