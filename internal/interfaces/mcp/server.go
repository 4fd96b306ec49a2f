package mcp

import (
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Danigallego24/RutaN/internal/application/chat"
	appRAG "github.com/Danigallego24/RutaN/internal/application/rag"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
)

// MCPServer MCP 服务器
type MCPServer struct {
	server  *mcp.Server
	handler http.Handler
	chat    *chat.Service
	index   *appRAG.Index
	logger  *slog.Logger
}

// NewServer 创建 MCP 服务器
func NewServer(chatService *chat.Service, index *appRAG.Index) *MCPServer {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "rutan-trip-planner",
			Version: "0.1.0",
		},
		nil,
	)

	s := &MCPServer{
		server: server,
		chat:   chatService,
		index:  index,
		logger: log.NewModuleLogger("mcp", "server"),
	}

	mcp.AddTool(server, &mcp.Tool{
		Name: "plan_trip",
		Description: `Send one message to the trip-planning assistant and get its reply.
The session keeps trip memory (destination, duration, style), history and the current itinerary across calls.

Parameters:
- session_id (string, optional): Session ID, defaults to "user_1"
- message (string, required): User message in Spanish, e.g. "Quiero un viaje a Sevilla de 5 días, estilo relax"
- destination, duration, style (string, optional): Explicit trip fields, they take priority over what is extracted from the message
- model (string, optional): smart | fast | local

Returns: is_itinerary flag, chat_message when the reply is a question, itinerary when one was generated.`,
	}, s.planTripTool)

	mcp.AddTool(server, &mcp.Tool{
		Name: "get_trip_state",
		Description: `Get the current state of a trip-planning session: trip memory, conversation phase (1 profiling, 2 generate, 3 modify), history size and the stored itinerary.
Parameters:
- session_id (string, optional): Session ID, defaults to "user_1"`,
	}, s.getTripStateTool)

	mcp.AddTool(server, &mcp.Tool{
		Name: "search_trip_files",
		Description: `Search the analyzed files (flight PDFs, bookings, photos) uploaded to a session.
Parameters:
- session_id (string, optional): Session ID, defaults to "user_1"
- query (string, required): What to look for, e.g. "hora de salida del vuelo"
- limit (int, optional): Maximum results, defaults to 3, max 10

Returns: matching fragments with source file, file type and relevance.`,
	}, s.searchTripFilesTool)

	mcp.AddTool(server, &mcp.Tool{
		Name: "check_model",
		Description: `Check whether a model hint can be used with the current configuration, without calling the model.
Parameters:
- model (string, optional): smart | fast | local, defaults to the configured model

Returns: ok flag, provider and model name, or an error message.`,
	}, s.checkModelTool)

	s.handler = mcp.NewSSEHandler(
		func(r *http.Request) *mcp.Server {
			return server
		},
		nil,
	)
	return s
}

// GetHandler 获取 HTTP Handler（用于集成到 HTTP 服务器）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}
