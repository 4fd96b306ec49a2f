package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Danigallego24/RutaN/internal/application/chat"
	domainRAG "github.com/Danigallego24/RutaN/internal/domain/rag"
	"github.com/Danigallego24/RutaN/internal/domain/trip"
)

const (
	defaultSearchLimit = 3
	maxSearchLimit     = 10
	fragmentLimit      = 500
)

// PlanTripInput plan_trip 输入
type PlanTripInput struct {
	SessionID   string `json:"session_id,omitempty" jsonschema:"Session ID, defaults to user_1"`
	Message     string `json:"message" jsonschema:"User message (required)"`
	Destination string `json:"destination,omitempty" jsonschema:"Explicit destination"`
	Duration    string `json:"duration,omitempty" jsonschema:"Explicit duration, e.g. 5 días"`
	Style       string `json:"style,omitempty" jsonschema:"Explicit style or budget"`
	Model       string `json:"model,omitempty" jsonschema:"Model hint: smart, fast or local"`
}

// PlanTripOutput plan_trip 输出
type PlanTripOutput struct {
	IsItinerary bool            `json:"is_itinerary" jsonschema:"True when the assistant generated an itinerary"`
	ChatMessage string          `json:"chat_message,omitempty" jsonschema:"Assistant reply when no itinerary was generated"`
	Itinerary   *trip.Itinerary `json:"itinerary,omitempty" jsonschema:"Generated itinerary"`
}

func (s *MCPServer) planTripTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input PlanTripInput,
) (*mcp.CallToolResult, PlanTripOutput, error) {
	var output PlanTripOutput
	if input.Message == "" && input.Destination == "" && input.Duration == "" && input.Style == "" {
		return nil, output, fmt.Errorf("message is required")
	}

	resp, err := s.chat.Generate(ctx, &chat.GenerateRequest{
		SessionID:   input.SessionID,
		Message:     input.Message,
		Destination: input.Destination,
		Duration:    input.Duration,
		Style:       input.Style,
		Model:       input.Model,
	})
	if err != nil {
		return nil, output, fmt.Errorf("generate failed: %w", err)
	}

	output.IsItinerary = resp.IsItinerary
	output.ChatMessage = resp.ChatMessage
	output.Itinerary = resp.Itinerary
	return nil, output, nil
}

// TripStateInput get_trip_state 输入
type TripStateInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session ID, defaults to user_1"`
}

// TripStateOutput get_trip_state 输出
type TripStateOutput struct {
	SessionID   string          `json:"session_id"`
	Memory      trip.TripMemory `json:"memory" jsonschema:"Accumulated destination, duration and style"`
	Phase       int             `json:"phase" jsonschema:"1 profiling, 2 generate, 3 modify"`
	PhaseName   string          `json:"phase_name"`
	HistorySize int             `json:"history_size"`
	Itinerary   *trip.Itinerary `json:"itinerary,omitempty"`
}

func (s *MCPServer) getTripStateTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input TripStateInput,
) (*mcp.CallToolResult, TripStateOutput, error) {
	var output TripStateOutput
	snap, err := s.chat.Snapshot(ctx, input.SessionID)
	if err != nil {
		return nil, output, fmt.Errorf("failed to load session: %w", err)
	}

	output = TripStateOutput{
		SessionID:   snap.SessionID,
		Memory:      snap.Memory,
		Phase:       snap.Phase,
		PhaseName:   snap.PhaseName,
		HistorySize: snap.HistorySize,
		Itinerary:   snap.Itinerary,
	}
	return nil, output, nil
}

// SearchTripFilesInput search_trip_files 输入
type SearchTripFilesInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session ID, defaults to user_1"`
	Query     string `json:"query" jsonschema:"Search query (required)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of results, defaults to 3, max 10"`
}

// SearchTripFilesOutput search_trip_files 输出
type SearchTripFilesOutput struct {
	Results    []*FileFragment `json:"results"`
	TotalCount int             `json:"total_count"`
}

// FileFragment 检索到的文件片段
type FileFragment struct {
	Source    string `json:"source" jsonschema:"Original file name"`
	FileType  string `json:"file_type"`
	Text      string `json:"text"`
	Relevance string `json:"relevance" jsonschema:"high, medium or low"`
}

func (s *MCPServer) searchTripFilesTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchTripFilesInput,
) (*mcp.CallToolResult, SearchTripFilesOutput, error) {
	output := SearchTripFilesOutput{Results: []*FileFragment{}}
	if input.Query == "" {
		return nil, output, fmt.Errorf("query is required")
	}
	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = chat.DefaultSessionID
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	hits, err := s.index.Search(ctx, input.Query, sessionID, limit)
	if err != nil {
		return nil, output, fmt.Errorf("search failed: %w", err)
	}

	for _, h := range hits {
		output.Results = append(output.Results, &FileFragment{
			Source:    h.Chunk.Metadata.Source,
			FileType:  h.Chunk.Metadata.FileType,
			Text:      domainRAG.Truncate(h.Chunk.Text, fragmentLimit),
			Relevance: scoreToRelevance(h.Score),
		})
	}
	output.TotalCount = len(output.Results)
	return nil, output, nil
}

// CheckModelInput check_model 输入
type CheckModelInput struct {
	Model string `json:"model,omitempty" jsonschema:"Model hint: smart, fast or local"`
}

func (s *MCPServer) checkModelTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CheckModelInput,
) (*mcp.CallToolResult, chat.ModelCheckResult, error) {
	return nil, *s.chat.ModelCheck(input.Model), nil
}

// scoreToRelevance 相似度转成相关性等级
func scoreToRelevance(score float32) string {
	if score >= 0.7 {
		return "high"
	}
	if score >= 0.4 {
		return "medium"
	}
	return "low"
}
