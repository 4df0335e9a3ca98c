// Package mcp implements a Model Context Protocol server exposing the
// server-only import analysis as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/serverfence/serverfence/internal/framework"
	"github.com/serverfence/serverfence/pkg/rule"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "serverfence"

	// toolCount is the expected number of registered tools.
	toolCount = 2
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Engine is the analysis engine. Nil builds one from default options.
	Engine *rule.Engine

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Version is reported in the server implementation info.
	Version string
}

// Server wraps the MCP SDK server with serverfence tool registrations.
type Server struct {
	inner  *mcpsdk.Server
	engine *rule.Engine
	cache  *framework.Cache
	mu     sync.RWMutex
	tools  []string
}

// NewServer creates a new MCP server with all serverfence tools registered.
func NewServer(deps ServerDeps) (*Server, error) {
	engine := deps.Engine
	if engine == nil {
		var err error

		engine, err = rule.NewEngine(rule.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("default engine: %w", err)
		}
	}

	cache, err := framework.NewCache(0)
	if err != nil {
		return nil, fmt.Errorf("detection cache: %w", err)
	}

	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	version := deps.Version
	if version == "" {
		version = "dev"
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version,
		},
		opts,
	)

	srv := &Server{
		inner:  inner,
		engine: engine,
		cache:  cache,
		tools:  make([]string, 0, toolCount),
	}

	srv.registerTools()

	return srv, nil
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	err := s.inner.Run(ctx, &mcpsdk.StdioTransport{})
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// RunWithTransport starts the MCP server on the given transport.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// registerTools adds all serverfence MCP tools to the server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameCheck,
		Description: checkToolDescription,
	}, s.handleCheck)
	s.trackTool(ToolNameCheck)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameDetect,
		Description: detectToolDescription,
	}, s.handleDetect)
	s.trackTool(ToolNameDetect)
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}
