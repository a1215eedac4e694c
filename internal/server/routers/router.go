package routers

import (
	"github.com/gin-gonic/gin"

	"weightguard/internal/server/handlers/maintenance"
	"weightguard/internal/server/handlers/product"
	"weightguard/internal/server/handlers/report"
	"weightguard/internal/server/handlers/settings"
	"weightguard/internal/server/middlewares"
	"weightguard/pkg/config"
	"weightguard/pkg/logger"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Settings    *settings.SettingsHandler
	Report      *report.ReportHandler
	Product     *product.ProductHandler
	Maintenance *maintenance.MaintenanceHandler
}

// SetupRoutes 配置所有路由，读接口允许 viewer，写接口需要 admin
func SetupRoutes(h *Handlers, keys []config.APIKeyConfig, log logger.Logger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.ErrorHandler(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "weightguard",
		})
	})

	v1 := r.Group("/api/v1", middlewares.APIKeyAuth(keys))
	{
		v1.GET("/settings", h.Settings.Get)
		v1.GET("/report", h.Report.Get)
		v1.GET("/report/export.csv", h.Report.Export)

		admin := v1.Group("", middlewares.RequireAdmin())
		{
			admin.PUT("/settings", h.Settings.Update)
			admin.POST("/reanalysis", h.Maintenance.Reanalyze)
			admin.POST("/digest", h.Maintenance.Digest)

			products := admin.Group("/products")
			{
				products.POST("/bulk", h.Product.Bulk)
				products.POST("/:id/check", h.Product.Check)
				products.PATCH("/:id/measures", h.Product.UpdateMeasures)
			}
		}
	}

	return r
}
