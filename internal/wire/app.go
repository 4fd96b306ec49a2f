package wire

import (
	"context"
	"log/slog"
	"time"

	appNotification "github.com/Danigallego24/RutaN/internal/application/notification"
	"github.com/Danigallego24/RutaN/internal/domain/events"
	applog "github.com/Danigallego24/RutaN/internal/infrastructure/log"
	"github.com/Danigallego24/RutaN/internal/infrastructure/watcher"
	"github.com/Danigallego24/RutaN/internal/infrastructure/websocket"
	"github.com/Danigallego24/RutaN/internal/interfaces"
)

// shutdownTimeout HTTP 优雅关闭的最长等待
const shutdownTimeout = 10 * time.Second

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer *interfaces.HTTPServer
	MCPServer  *interfaces.MCPServer

	wsHub               *websocket.Hub
	eventBus            events.EventBus
	rulesWatcher        *watcher.RulesWatcher
	notificationService *appNotification.Service
	logger              *slog.Logger

	serverErr chan error
}

// NewApp 创建应用实例
func NewApp(
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	wsHub *websocket.Hub,
	eventBus events.EventBus,
	rulesWatcher *watcher.RulesWatcher,
	notificationService *appNotification.Service,
) *App {
	return &App{
		HTTPServer:          httpServer,
		MCPServer:           mcpServer,
		wsHub:               wsHub,
		eventBus:            eventBus,
		rulesWatcher:        rulesWatcher,
		notificationService: notificationService,
		logger:              applog.NewModuleLogger("app", "main"),
		serverErr:           make(chan error, 1),
	}
}

// Start 启动所有服务
func (a *App) Start() error {
	a.logger.Info("Starting RutaN backend")

	// 通知订阅要先于任何请求
	a.notificationService.Start()

	// 规则文件无效时继续使用内置规则
	if err := a.rulesWatcher.Start(); err != nil {
		a.logger.Error("Failed to start rules watcher",
			"error", err,
		)
	}

	go func() {
		if err := a.HTTPServer.Start(); err != nil {
			a.logger.Error("HTTP server stopped with error",
				"error", err,
			)
			a.serverErr <- err
		}
	}()

	a.logger.Info("RutaN backend started")
	return nil
}

// ServerErr HTTP 服务器异常退出时收到错误
func (a *App) ServerErr() <-chan error {
	return a.serverErr
}

// Stop 停止所有服务
func (a *App) Stop() error {
	a.logger.Info("Stopping RutaN backend")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var shutdownErr error
	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		a.logger.Error("Failed to shut down HTTP server",
			"error", err,
		)
		shutdownErr = err
	}

	a.rulesWatcher.Stop()
	a.notificationService.Stop()

	// 等待已分发的事件处理完，再关闭推送连接
	a.eventBus.Close()
	a.wsHub.Close()

	a.logger.Info("RutaN backend stopped")
	return shutdownErr
}
