// Package mcpserver exposes the QA pipeline as an MCP tool so agent runtimes
// can ask Landy questions without going through Discord.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jordieb/landy/internal/qa"
)

const Version = "0.1.0"

// askerID tags MCP-originated questions in the transcript store.
const askerID = "mcp"

type Server struct {
	qa     qa.Service
	server *mcp.Server
}

func NewServer(svc qa.Service) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("qa service is required")
	}

	s := &Server{
		qa: svc,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "landy",
			Version: Version,
		}, nil),
	}
	s.registerTools()
	return s, nil
}

// Run serves the MCP protocol over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the DFO question to answer"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
	FromCache  bool   `json:"from_cache"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a Dungeon Fighter Online question from the indexed game guides",
	}, s.handleAsk)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.qa.Answer(ctx, input.Question, askerID)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{
		QuestionID: answer.QuestionID,
		Answer:     answer.Text,
		FromCache:  answer.FromCache,
	}, nil
}
