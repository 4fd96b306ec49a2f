package application

import (
	"github.com/google/wire"

	"github.com/Danigallego24/RutaN/internal/application/chat"
	"github.com/Danigallego24/RutaN/internal/application/notification"
	"github.com/Danigallego24/RutaN/internal/application/rag"
	"github.com/Danigallego24/RutaN/internal/application/session"
	"github.com/Danigallego24/RutaN/internal/domain/trip"
)

// ProviderSet Application 层总 ProviderSet
var ProviderSet = wire.NewSet(
	trip.NewDefaultExtractor, // 规则表由 RulesWatcher 热替换
	session.ProviderSet,
	rag.ProviderSet,
	chat.ProviderSet,
	notification.ProviderSet,
)
