package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/marinetex-api/auth"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, app *App) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/guest", auth.CreateGuestUser(app.DB, app.Config.JWTSecret))
		authGroup.POST("/google-user", auth.GoogleUserLogin(app.DB, app.Verifier, app.Carts, app.Config.JWTSecret, app.Log))
	}
}
