package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/serverfence/serverfence/internal/framework"
)

// handleCheck processes serverfence_check tool calls.
func (s *Server) handleCheck(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input CheckInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateCheckInput(input)
	if err != nil {
		return errorResult(err)
	}

	report, err := s.engine.Check(ctx, input.Filename, []byte(input.Code))
	if err != nil {
		return errorResult(fmt.Errorf("check %s: %w", input.Filename, err))
	}

	return jsonResult(report)
}

// detectOutput is the serverfence_detect result payload.
type detectOutput struct {
	Framework string `json:"framework"`
	Root      string `json:"root,omitempty"`
}

// handleDetect processes serverfence_detect tool calls.
func (s *Server) handleDetect(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input DetectInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Dir == "" {
		return errorResult(ErrEmptyDir)
	}

	name := s.cache.Detect(input.Dir)
	root := framework.ProjectRoot(input.Dir)

	return jsonResult(detectOutput{Framework: name, Root: root})
}
