package notification

import (
	"github.com/google/wire"

	appNotification "github.com/Danigallego24/RutaN/internal/application/notification"
	"github.com/Danigallego24/RutaN/internal/domain/notification"
)

// ProviderSet 通知基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	NewMemoryRepository,
	NewWebSocketPusher,
	wire.Bind(new(notification.Repository), new(*MemoryRepository)),
	wire.Bind(new(appNotification.Pusher), new(*WebSocketPusher)),
)
