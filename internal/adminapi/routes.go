package adminapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/kestrelnet/vcdn/internal/adminapi/docs"
)

// registerRoutes wires the admin API's routes onto r, mirroring
// RegisterRoutes in the teacher's internal/api/routes.go: a swagger UI
// mounted at /swagger, a versioned API group, and (new to this module) a
// Prometheus-format /metrics endpoint.
func registerRoutes(r *gin.Engine, h *handler) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.GET("/health", h.health)
	api.GET("/stats", h.stats)
	api.GET("/stats/history", h.history)
}
