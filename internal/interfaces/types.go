package interfaces

import (
	"github.com/Danigallego24/RutaN/internal/interfaces/http"
	"github.com/Danigallego24/RutaN/internal/interfaces/mcp"
)

// HTTPServer HTTP 服务器类型别名
type HTTPServer = http.HTTPServer

// MCPServer MCP 服务器类型别名
type MCPServer = mcp.MCPServer
