package app

import (
	"alcie_study_backend/docs"
	"alcie_study_backend/internal/middleware"
	"alcie_study_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		study := api.Group("/study")
		{
			study.GET("/dataset/meta", c.study.GetDatasetMeta)
			study.GET("/images/:imageId", c.image.GetImage)

			study.POST("/sessions", c.study.CreateSession)

			// 会话路由：中间件先校验会话存在
			session := study.Group("/sessions/:id")
			session.Use(middleware.SessionMiddleware(a.services.sessions))
			{
				session.GET("", c.study.GetSession)
				session.POST("/start", c.study.StartSession)
				session.GET("/current", c.study.GetCurrentSample)
				session.POST("/responses", c.study.RecordResponse)
				session.POST("/advance", c.study.Advance)
				session.GET("/progress", c.study.GetProgress)
				session.POST("/reset", c.study.ResetSession)
				session.POST("/assessments", c.study.RecordAssessment)
				session.GET("/assessments", c.study.ListAssessments)
				session.POST("/questionnaire", c.study.SubmitQuestionnaire)
				session.GET("/export", c.export.Export)
				session.POST("/export/file", c.export.ExportToFile)
			}
		}
	}
}
