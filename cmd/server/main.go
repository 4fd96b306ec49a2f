// @title RutaN API
// @version 1.0
// @description RutaN 旅行规划助手后端 API
// @host localhost:8000
// @BasePath /
// @schemes http
package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Danigallego24/RutaN/internal/infrastructure/config"
	applog "github.com/Danigallego24/RutaN/internal/infrastructure/log"
	"github.com/Danigallego24/RutaN/internal/infrastructure/singleton"
	"github.com/Danigallego24/RutaN/internal/wire"
)

func main() {
	// 初始化日志系统
	if err := applog.Init(nil); err != nil {
		log.Printf("日志文件不可用，输出到 stdout: %v", err)
	}

	// 端口检查：同一台机器只跑一个实例
	cfg := config.NewConfig()
	if err := singleton.CheckPort(cfg.Server.HTTPPort); err != nil {
		if errors.Is(err, singleton.ErrAlreadyRunning) {
			log.Println("检测到已有实例在运行，当前进程退出")
			os.Exit(0)
		}
		log.Fatalf("端口检查失败: %v", err)
	}

	// Wire 生成的初始化函数
	app, cleanup, err := wire.InitializeAll()
	if err != nil {
		applog.GetLogger().Error("Failed to initialize application",
			"error", err,
		)
		os.Exit(1)
	}
	defer cleanup()

	if err := app.Start(); err != nil {
		applog.GetLogger().Error("Failed to start application",
			"error", err,
		)
		os.Exit(1)
	}

	// 优雅关闭
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-app.ServerErr():
	}

	applog.GetLogger().Info("Shutting down application...")
	if err := app.Stop(); err != nil {
		applog.GetLogger().Error("Error during application shutdown",
			"error", err,
		)
	}
	applog.GetLogger().Info("Application stopped")
}
