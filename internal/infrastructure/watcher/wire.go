package watcher

import (
	"github.com/google/wire"

	"github.com/Danigallego24/RutaN/internal/domain/events"
	"github.com/Danigallego24/RutaN/internal/domain/trip"
	"github.com/Danigallego24/RutaN/internal/infrastructure/config"
)

// ProviderSet 事件总线和规则监听 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideEventBus,
	ProvideRulesWatcher,
)

// ProvideEventBus 提供事件总线实例
func ProvideEventBus() events.EventBus {
	return NewEventBus()
}

// ProvideRulesWatcher 提供规则监听器
func ProvideRulesWatcher(cfg *config.RulesConfig, extractor *trip.Extractor, eventBus events.EventBus) *RulesWatcher {
	return NewRulesWatcher(cfg.File, extractor, eventBus)
}
