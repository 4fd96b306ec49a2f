package notification

import (
	"github.com/google/wire"

	"github.com/Danigallego24/RutaN/internal/domain/notification"
)

// ProviderSet 通知应用层 ProviderSet
// Pusher 和 Repository 的绑定在基础设施层
var ProviderSet = wire.NewSet(
	notification.NewService,
	NewService,
)
