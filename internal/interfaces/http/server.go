package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Danigallego24/RutaN/docs" // Swagger docs
	"github.com/Danigallego24/RutaN/internal/infrastructure/config"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
	"github.com/Danigallego24/RutaN/internal/interfaces/http/handler"
	"github.com/Danigallego24/RutaN/internal/interfaces/http/middleware"
	"github.com/Danigallego24/RutaN/internal/interfaces/mcp"
)

// HTTPServer HTTP 服务器
type HTTPServer struct {
	router   *gin.Engine
	httpPort string
	server   *http.Server
	logger   *slog.Logger
}

// NewServer 创建 HTTP 服务器
func NewServer(
	serverCfg *config.ServerConfig,
	uploadCfg *config.UploadConfig,
	chatHandler *handler.ChatHandler,
	fileHandler *handler.FileHandler,
	modelHandler *handler.ModelHandler,
	notificationHandler *handler.NotificationHandler,
	eventsHandler *handler.EventsHandler,
	mcpServer *mcp.MCPServer,
) *HTTPServer {
	logger := log.NewModuleLogger("http", "server")

	if !log.IsDebugMode() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			log.FromContext(c.Request.Context(), logger).Error("Handler panic recovered",
				"path", c.Request.URL.Path,
				"panic", recovered,
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Error interno del servidor"})
		}),
		middleware.RequestID(),
		middleware.AccessLog(),
		cors.New(cors.Config{
			AllowOrigins:     serverCfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	registerRoutes(router, uploadCfg, chatHandler, fileHandler, modelHandler, notificationHandler, eventsHandler)

	// MCP SSE 端点
	if mcpServer != nil {
		router.Any("/mcp/sse", gin.WrapH(mcpServer.GetHandler()))
	}

	return &HTTPServer{
		router:   router,
		httpPort: serverCfg.HTTPPort,
		logger:   logger,
	}
}

// registerRoutes 注册路由
func registerRoutes(
	router *gin.Engine,
	uploadCfg *config.UploadConfig,
	chatHandler *handler.ChatHandler,
	fileHandler *handler.FileHandler,
	modelHandler *handler.ModelHandler,
	notificationHandler *handler.NotificationHandler,
	eventsHandler *handler.EventsHandler,
) {
	api := router.Group("/api", middleware.EnsureUTF8Body())
	{
		chatGroup := api.Group("/chat")
		{
			chatGroup.POST("/generate", chatHandler.Generate)
			chatGroup.POST("/reset", chatHandler.Reset)
			chatGroup.GET("/sessions/:session_id", chatHandler.Snapshot)
		}

		files := api.Group("/files")
		{
			files.POST("/upload", middleware.RateLimit(middleware.NewIPRateLimiter(uploadCfg.RatePerMinute)), fileHandler.Upload)
			files.POST("/search", fileHandler.Search)
		}

		api.GET("/models/check", modelHandler.Check)
		api.GET("/notifications/:session_id", notificationHandler.Recent)
		api.POST("/debug", handler.DebugEcho)
	}

	router.GET("/ws/sessions/:session_id", eventsHandler.SessionEvents)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Handler 路由（测试用）
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start 启动服务器，阻塞到关闭
func (s *HTTPServer) Start() error {
	s.server = &http.Server{
		Addr:              s.httpPort,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("HTTP server starting",
		"port", s.httpPort,
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
