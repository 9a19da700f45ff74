package app

import (
	"chapterflux_backend/docs"
	"chapterflux_backend/internal/config"
	"chapterflux_backend/internal/middleware"
	"chapterflux_backend/internal/model"
	"chapterflux_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		// 令牌本身即凭证
		public.GET("/exports/:token", c.stats.DownloadExport)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerReaderRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/users/:userId/achievements/recompute", c.achievement.Recompute)
	}
}

func (a *App) registerReaderRoutes(rg *gin.RouterGroup, c *controllers) {
	// 文档
	rg.POST("/documents", c.document.Create)
	rg.POST("/documents/upload", c.document.Upload)
	rg.GET("/documents", c.document.List)
	rg.GET("/documents/:id", c.document.Get)

	// 阅读会话
	rg.POST("/reading-sessions", c.readingSession.Track)
	rg.GET("/reading-sessions", c.readingSession.List)

	// 测验结果
	rg.POST("/quiz-results", c.quizResult.Record)
	rg.GET("/quiz-results", c.quizResult.List)

	// 统计与成就
	rg.GET("/user/stats", c.stats.GetUserStats)
	rg.POST("/user/stats/export", c.stats.CreateExport)
	rg.GET("/achievements", c.achievement.GetUserAchievements)
}
