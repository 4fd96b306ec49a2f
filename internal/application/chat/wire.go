package chat

import (
	"github.com/google/wire"

	"github.com/Danigallego24/RutaN/internal/application/rag"
	"github.com/Danigallego24/RutaN/internal/infrastructure/llm"
)

// ProviderSet 对话应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewService,
	wire.Bind(new(Retriever), new(*rag.Index)),
	wire.Bind(new(ModelResolver), new(*llm.Resolver)),
)
