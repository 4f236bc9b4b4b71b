package route

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wuwenhuang/bethel-rsvp/internal/api/http/handler"
	"github.com/wuwenhuang/bethel-rsvp/internal/api/http/middleware"
	"github.com/wuwenhuang/bethel-rsvp/internal/config"
)

func SetupRouter(
	log *zap.Logger,
	cfg *config.Config,
	healthHdl HealthHandler,
	rsvpHdl RSVPHandler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard

	router := gin.Default()

	// middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.RequestTimeout(cfg.HTTPServer.Timeout.Request))
	router.Use(middleware.CORS(cfg.HTTPServer.CORS))

	router.HandleMethodNotAllowed = true
	router.NoMethod(handler.NoMethod)
	router.NoRoute(handler.NoRoute)

	RegisterHealth(router, healthHdl)

	rsvpPath := router.Group("/rsvp")
	RegisterRSVP(rsvpPath, rsvpHdl)

	return router
}
