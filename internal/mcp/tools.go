package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameCheck  = "serverfence_check"
	ToolNameDetect = "serverfence_detect"
)

// Tool descriptions.
const (
	checkToolDescription = "Check a JavaScript or TypeScript source file for " +
		"imports, requires, and re-exports of server-only modules that could " +
		"leak into browser code. Returns diagnostics with suggested fixes."

	detectToolDescription = "Detect which meta-framework (TanStack Start, " +
		"Next.js, SolidStart, Remix) a JavaScript project uses, from its " +
		"package.json dependencies."
)

// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
const MaxCodeInputBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptyCode indicates the code parameter is empty.
	ErrEmptyCode = errors.New("code parameter is required and must not be empty")
	// ErrEmptyFilename indicates the filename parameter is empty.
	ErrEmptyFilename = errors.New("filename parameter is required and must not be empty")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
	// ErrEmptyDir indicates the dir parameter is empty.
	ErrEmptyDir = errors.New("dir parameter is required and must not be empty")
)

// CheckInput is the input schema for the serverfence_check tool.
type CheckInput struct {
	Code     string `json:"code"     jsonschema:"JavaScript or TypeScript source code to check"`
	Filename string `json:"filename" jsonschema:"file path the code would live at (drives classification, e.g. src/app.tsx)"`
}

// DetectInput is the input schema for the serverfence_detect tool.
type DetectInput struct {
	Dir string `json:"dir" jsonschema:"directory inside the project to detect the framework for"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateCheckInput checks the serverfence_check input constraints.
func validateCheckInput(input CheckInput) error {
	if input.Code == "" {
		return ErrEmptyCode
	}

	if input.Filename == "" {
		return ErrEmptyFilename
	}

	if len(input.Code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(input.Code), MaxCodeInputBytes)
	}

	return nil
}
