package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shareit-platform/service-booking/pkg/health"
	"github.com/shareit-platform/service-booking/pkg/middleware"
)

// RouterConfig collects what NewRouter mounts.
type RouterConfig struct {
	Logger         *zap.Logger
	Bookings       *BookingHandler
	Items          *ItemHandler
	Requests       *RequestHandler
	Health         *health.Handler
	RequestsPerMin int
}

// NewRouter builds the gin engine with global middleware and all routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(router)
	}

	api := router.Group("")
	api.Use(middleware.RateLimit(cfg.RequestsPerMin))
	cfg.Bookings.RegisterRoutes(api)
	cfg.Items.RegisterRoutes(api)
	cfg.Requests.RegisterRoutes(api)

	return router
}
