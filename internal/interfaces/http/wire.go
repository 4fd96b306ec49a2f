package http

import (
	"github.com/google/wire"

	"github.com/Danigallego24/RutaN/internal/interfaces/http/handler"
)

// ProviderSet HTTP 接口层 ProviderSet
var ProviderSet = wire.NewSet(
	handler.ProviderSet,
	NewServer,
)
