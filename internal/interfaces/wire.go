package interfaces

import (
	"github.com/google/wire"

	"github.com/Danigallego24/RutaN/internal/interfaces/http"
	"github.com/Danigallego24/RutaN/internal/interfaces/mcp"
)

// ProviderSet Interfaces 层总 ProviderSet
var ProviderSet = wire.NewSet(
	http.ProviderSet,
	mcp.ProviderSet,
)
