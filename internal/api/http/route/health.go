package route

import (
	"github.com/gin-gonic/gin"
)

type HealthHandler interface {
	Home(c *gin.Context)
	Health(c *gin.Context)
}

func RegisterHealth(r *gin.Engine, h HealthHandler) {
	r.GET("/", h.Home)
	r.GET("/health", h.Health)
}
