//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"github.com/Danigallego24/RutaN/internal/application"
	"github.com/Danigallego24/RutaN/internal/infrastructure"
	"github.com/Danigallego24/RutaN/internal/interfaces"
)

// InitializeAll 初始化所有服务（HTTP + MCP）
// 返回的 cleanup 关闭数据库、Redis 和 Qdrant 连接
func InitializeAll() (*App, func(), error) {
	wire.Build(
		// 按层组合 ProviderSet
		infrastructure.ProviderSet, // 基础设施层
		application.ProviderSet,    // 应用层
		interfaces.ProviderSet,     // 接口层
		NewApp,                     // 组合所有服务的应用结构
	)
	return nil, nil, nil
}
