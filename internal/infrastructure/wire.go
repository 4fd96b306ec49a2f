package infrastructure

import (
	"github.com/google/wire"

	"github.com/Danigallego24/RutaN/internal/infrastructure/config"
	"github.com/Danigallego24/RutaN/internal/infrastructure/embedding"
	"github.com/Danigallego24/RutaN/internal/infrastructure/llm"
	"github.com/Danigallego24/RutaN/internal/infrastructure/notification"
	"github.com/Danigallego24/RutaN/internal/infrastructure/storage"
	"github.com/Danigallego24/RutaN/internal/infrastructure/tokenizer"
	"github.com/Danigallego24/RutaN/internal/infrastructure/vector"
	"github.com/Danigallego24/RutaN/internal/infrastructure/watcher"
	"github.com/Danigallego24/RutaN/internal/infrastructure/websocket"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	storage.ProviderSet,
	vector.ProviderSet,
	embedding.ProviderSet,
	llm.ProviderSet,
	tokenizer.ProviderSet,
	watcher.ProviderSet,
	websocket.ProviderSet,
	notification.ProviderSet,
)
