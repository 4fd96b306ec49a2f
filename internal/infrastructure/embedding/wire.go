package embedding

import (
	"github.com/google/wire"

	"github.com/Danigallego24/RutaN/internal/domain/rag"
)

// ProviderSet Embedding ProviderSet
var ProviderSet = wire.NewSet(
	NewClient,
	wire.Bind(new(rag.Embedder), new(*Client)),
)
