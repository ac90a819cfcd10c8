// Package mcp exposes the sequencer as a Model Context Protocol server.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/epsilon"
	"github.com/aretw0/epsilon/internal/logging"
	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/locale"
	"github.com/aretw0/epsilon/pkg/view"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GraphURI is the resource holding the annotated Mermaid diagram.
const GraphURI = "epsilon://graph"

// Response is the structured result of every state tool.
type Response struct {
	State domain.State `json:"state" jsonschema_description:"The sequencer snapshot after the operation"`
	View  view.View    `json:"view" jsonschema_description:"Localized presentation of the snapshot"`
}

// Engine is the control surface exposed as tools.
type Engine interface {
	Play(ctx context.Context) domain.State
	Pause() domain.State
	Reset() domain.State
	Step() domain.State
	Select(stageID string) domain.State
	Snapshot() domain.State
	View(s domain.State, lang string) view.View
	Graph(s domain.State, lang, format string, overlay bool) (string, error)
}

// Server wraps the Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	baseCtx   context.Context
	lang      string
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithBaseContext bounds timers started by the start tool.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) {
		if ctx != nil {
			s.baseCtx = ctx
		}
	}
}

// WithLang sets the language used when a tool call omits one.
func WithLang(lang string) Option {
	return func(s *Server) {
		if l, err := locale.Parse(lang); err == nil {
			s.lang = l
		}
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		baseCtx:   context.Background(),
		lang:      locale.Default,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("epsilon-mcp", strings.TrimSpace(epsilon.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the protocol over SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func langParam() mcp.ToolOption {
	return mcp.WithString("lang", mcp.Description("Display language: en or es (optional)"))
}

func (s *Server) registerTools() {
	controls := []struct {
		name, description string
		op                func() domain.State
	}{
		{"start", "Start or resume the animation. A completed run restarts from the first stage.", func() domain.State { return s.engine.Play(s.baseCtx) }},
		{"pause", "Pause the animation, keeping the current step.", s.engine.Pause},
		{"reset", "Stop the animation and return to the initial state.", s.engine.Reset},
		{"tick", "Advance a running animation by one step.", s.engine.Step},
		{"snapshot", "Return the current state without changing it.", s.engine.Snapshot},
	}
	for _, c := range controls {
		op := c.op
		tool := mcp.NewTool(c.name,
			mcp.WithDescription(c.description),
			langParam(),
			mcp.WithOutputSchema[Response](),
		)
		s.mcpServer.AddTool(tool, mcp.NewStructuredToolHandler(
			func(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (Response, error) {
				return s.respond(op(), args), nil
			}))
	}

	// TOOL: select_stage
	selectTool := mcp.NewTool("select_stage",
		mcp.WithDescription("Toggle the focus on a stage to read its description. Selecting the focused stage clears it."),
		mcp.WithString("stage_id", mcp.Required(), mcp.Description("Stage identifier, e.g. decision or embedder")),
		langParam(),
		mcp.WithOutputSchema[Response](),
	)
	s.mcpServer.AddTool(selectTool, mcp.NewStructuredToolHandler(s.handleSelect))

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Render the pipeline diagram for the current state."),
		mcp.WithString("format", mcp.Description("mermaid (default) or dot")),
		mcp.WithBoolean("overlay", mcp.Description("Color active stages and edges (default true)")),
		langParam(),
	), s.handleGraph)
}

func (s *Server) handleSelect(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (Response, error) {
	id, _ := args["stage_id"].(string)
	if id == "" {
		return Response{}, errors.New("stage_id is required")
	}
	return s.respond(s.engine.Select(id), args), nil
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format := request.GetString("format", "mermaid")
	overlay := request.GetBool("overlay", true)
	lang := s.resolveLang(request.GetString("lang", ""))

	out, err := s.engine.Graph(s.engine.Snapshot(), lang, format, overlay)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("graph failed: %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) respond(st domain.State, args map[string]interface{}) Response {
	lang, _ := args["lang"].(string)
	return Response{State: st, View: s.engine.View(st, s.resolveLang(lang))}
}

func (s *Server) resolveLang(lang string) string {
	if lang == "" {
		return s.lang
	}
	l, err := locale.Parse(lang)
	if err != nil {
		s.logger.Debug("MCP: unknown language, using default", "lang", lang)
		return s.lang
	}
	return l
}

func (s *Server) registerResources() {
	// EXPOSE: epsilon://graph
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Pipeline Diagram",
		mcp.WithResourceDescription("Mermaid flowchart of the pipeline with the current step highlighted"),
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		out, err := s.engine.Graph(s.engine.Snapshot(), s.lang, "mermaid", true)
		if err != nil {
			return nil, fmt.Errorf("failed to render graph: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GraphURI,
				MIMEType: "text/plain",
				Text:     out,
			},
		}, nil
	})
}
