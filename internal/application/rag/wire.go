package rag

import (
	"github.com/google/wire"

	"github.com/Danigallego24/RutaN/internal/infrastructure/llm"
)

// ProviderSet RAG 应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewIndex,
	NewAnalyzer,
	NewUploadService,
	wire.Bind(new(ModelProvider), new(*llm.Resolver)),
)
