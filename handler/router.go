package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docqa-be/logger"
	"github.com/tieubaoca/docqa-be/metrics"
	"github.com/tieubaoca/docqa-be/middleware"
)

type RouterConfig struct {
	JWTSecret   string
	CORSOrigins []string
}

// NewRouter mounts every route of the service.
func NewRouter(cfg RouterConfig, namespace *NamespaceHandler, ws *WebSocketHandler, m *metrics.Metrics, log *logger.Logger) *gin.Engine {
	router := gin.New()
	corsHandler := NewCorsHandler(cfg.CORSOrigins)

	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(log),
		middleware.RequestMetrics(m),
		corsHandler.CorsMiddleware,
	)

	router.GET("/health/", namespace.HandleHealth)
	router.POST("/question/", namespace.HandleQuestion)
	router.GET("/ws/question/", ws.HandleQuestion)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.POST("/database/", namespace.HandleCreateDatabase)
		protected.PUT("/add_document/", namespace.HandleAddDocument)
		protected.DELETE("/delete_document/", namespace.HandleDeleteDocument)
	}

	return router
}
