package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/auth"
	"github.com/junaidrashid-git/marinetex-api/cart"
	"github.com/junaidrashid-git/marinetex-api/config"
	orderControllers "github.com/junaidrashid-git/marinetex-api/controllers/order"
	telrControllers "github.com/junaidrashid-git/marinetex-api/controllers/telr"
	"github.com/junaidrashid-git/marinetex-api/metrics"
	"github.com/junaidrashid-git/marinetex-api/pricing"
)

// App carries everything the route groups hand to their controllers.
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	Carts    *cart.Service
	Settings *pricing.GormSettings
	Orders   orderControllers.Deps
	Hub      *orderControllers.Hub
	Verifier auth.TokenVerifier
	Gateway  telrControllers.Gateway
	Metrics  *metrics.Metrics
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, app *App) {
	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := app.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if app.Metrics != nil {
		r.GET("/metrics", app.Metrics.Handler())
	}

	// Public auth routes (no middleware)
	SetupAuthRoutes(r, app)

	// Catalog, shipping quote and carts
	SetupStoreRoutes(r, app)

	// Checkout and order lookup
	SetupOrderRoutes(r, app)

	// Telr payment routes
	SetupTelrRoutes(r, app)

	// User routes (JWT-protected)
	SetupUserRoutes(r, app)

	// Admin routes (API-key-protected)
	SetupAdminRoutes(r, app)
}
