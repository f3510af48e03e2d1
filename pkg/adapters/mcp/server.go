package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/seqflow"
	"github.com/aretw0/seqflow/internal/presentation/graph"
	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/flow"
	"github.com/aretw0/seqflow/pkg/parser"
	"github.com/aretw0/seqflow/pkg/ports"
	"github.com/aretw0/seqflow/pkg/render"
	"github.com/aretw0/seqflow/pkg/samples"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

const (
	diagramURI = "seqflow://diagram"
	viewURI    = "seqflow://view"
)

// ParseResponse aligns with the OpenAPI schema of POST /parse.
type ParseResponse struct {
	Diagram *domain.Diagram `json:"diagram" jsonschema_description:"The parsed diagram"`
	Stats   parser.Stats    `json:"stats" jsonschema_description:"Line counters of the parse"`
	Sources []string        `json:"sources" jsonschema_description:"Entities a full animation starts from"`
}

// PathResponse carries a path or a preview.
type PathResponse struct {
	Path  []string `json:"path" jsonschema_description:"Entity ids in traversal order"`
	RunID string   `json:"run_id,omitempty" jsonschema_description:"Animation run started for the path"`
}

// RunResponse identifies a started animation.
type RunResponse struct {
	RunID string         `json:"run_id"`
	Kind  domain.RunKind `json:"kind"`
}

type sourceArgs struct {
	Source string `json:"source"`
}

type loadArgs struct {
	Source   string `json:"source"`
	Sample   string `json:"sample"`
	Document string `json:"document"`
}

type pathArgs struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Animate bool   `json:"animate"`
}

type previewArgs struct {
	ID string `json:"id"`
}

type animateArgs struct {
	Start string `json:"start"`
}

// Engine defines what the MCP server needs from the seqflow engine.
type Engine interface {
	ports.Animator
	Diagram() *domain.Diagram
	Sources() []string
	Table() *render.Table
}

// Server wraps the seqflow Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	library   ports.DiagramSource
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLibrary lets load_diagram fetch library documents.
func WithLibrary(src ports.DiagramSource) Option {
	return func(s *Server) { s.library = src }
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    slog.Default(),
		mcpServer: server.NewMCPServer("seqflow-mcp", strings.TrimSpace(seqflow.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it down
// when ctx is done.
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

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
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

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("parse_diagram",
		mcp.WithDescription("Parse sequence diagram text into entities, connections and notes without loading it."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Diagram text (PlantUML-like)")),
		mcp.WithOutputSchema[ParseResponse](),
	), mcp.NewStructuredToolHandler(s.handleParse))

	s.mcpServer.AddTool(mcp.NewTool("load_diagram",
		mcp.WithDescription("Load a diagram onto the canvas from text, a bundled sample or a library document."),
		mcp.WithString("source", mcp.Description("Diagram text")),
		mcp.WithString("sample", mcp.Description("Bundled sample name")),
		mcp.WithString("document", mcp.Description("Library document id")),
		mcp.WithOutputSchema[ParseResponse](),
	), mcp.NewStructuredToolHandler(s.handleLoad))

	s.mcpServer.AddTool(mcp.NewTool("find_path",
		mcp.WithDescription("Find the shortest message path between two entities of the loaded diagram."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Start entity id")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Target entity id")),
		mcp.WithBoolean("animate", mcp.Description("Also animate the path on the canvas")),
		mcp.WithOutputSchema[PathResponse](),
	), mcp.NewStructuredToolHandler(s.handlePath))

	s.mcpServer.AddTool(mcp.NewTool("preview_path",
		mcp.WithDescription("List every entity reachable from an entity, in depth-first order."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entity id")),
		mcp.WithOutputSchema[PathResponse](),
	), mcp.NewStructuredToolHandler(s.handlePreview))

	s.mcpServer.AddTool(mcp.NewTool("animate",
		mcp.WithDescription("Start a flow animation. Without start, every flow is animated in turn."),
		mcp.WithString("start", mcp.Description("Entity the flow starts from (optional)")),
		mcp.WithOutputSchema[RunResponse](),
	), mcp.NewStructuredToolHandler(s.handleAnimate))

	s.mcpServer.AddTool(mcp.NewTool("stop_animation",
		mcp.WithDescription("Stop the running animation and clear highlights."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.engine.StopAnimation()
		return mcp.NewToolResultText("stopped"), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("set_speed",
		mcp.WithDescription("Set the animation speed factor. Returns the clamped value."),
		mcp.WithNumber("speed", mcp.Required(), mcp.Description("Speed factor, 1 is normal")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		v, err := request.RequireFloat("speed")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%g", s.engine.SetSpeed(v))), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("list_samples",
		mcp.WithDescription("List the bundled sample diagrams."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(samples.Names())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("export_mermaid",
		mcp.WithDescription("Render diagram text (or the loaded diagram) as Mermaid."),
		mcp.WithString("source", mcp.Description("Diagram text; defaults to the loaded diagram")),
		mcp.WithString("kind", mcp.Description("sequence (default) or flowchart"), mcp.Enum("sequence", "flowchart")),
	), s.handleMermaid)
}

// Handler methods for structured tools

func (s *Server) handleParse(ctx context.Context, request mcp.CallToolRequest, args sourceArgs) (ParseResponse, error) {
	d, stats := parser.ParseWithStats(args.Source)
	return ParseResponse{
		Diagram: d,
		Stats:   stats,
		Sources: flow.Build(d.Connections).Sources(),
	}, nil
}

func (s *Server) handleLoad(ctx context.Context, request mcp.CallToolRequest, args loadArgs) (ParseResponse, error) {
	text := args.Source
	switch {
	case text != "":
	case args.Sample != "":
		var ok bool
		if text, ok = samples.Get(args.Sample); !ok {
			return ParseResponse{}, s.toolError(fmt.Errorf("%w: %s", domain.ErrUnknownSample, args.Sample))
		}
	case args.Document != "":
		if s.library == nil {
			return ParseResponse{}, errors.New("no diagram library configured")
		}
		doc, err := s.library.Get(ctx, args.Document)
		if err != nil {
			return ParseResponse{}, s.toolError(err)
		}
		text = doc.Source
	default:
		return ParseResponse{}, errors.New("one of source, sample or document is required")
	}

	_, stats := parser.ParseWithStats(text)
	d, err := s.engine.Load(ctx, text)
	if err != nil {
		return ParseResponse{}, s.toolError(err)
	}
	return ParseResponse{Diagram: d, Stats: stats, Sources: s.engine.Sources()}, nil
}

func (s *Server) handlePath(ctx context.Context, request mcp.CallToolRequest, args pathArgs) (PathResponse, error) {
	path, err := s.engine.FindPath(args.From, args.To)
	if err != nil {
		return PathResponse{}, s.toolError(err)
	}
	resp := PathResponse{Path: path}
	if args.Animate {
		run, err := s.engine.HighlightPath(context.WithoutCancel(ctx), args.From, args.To)
		if err != nil {
			return PathResponse{}, s.toolError(err)
		}
		resp.RunID = run.ID()
	}
	return resp, nil
}

func (s *Server) handlePreview(ctx context.Context, request mcp.CallToolRequest, args previewArgs) (PathResponse, error) {
	return PathResponse{Path: s.engine.PreviewPath(args.ID)}, nil
}

func (s *Server) handleAnimate(ctx context.Context, request mcp.CallToolRequest, args animateArgs) (RunResponse, error) {
	// Tool calls return immediately; the run keeps going.
	runCtx := context.WithoutCancel(ctx)
	var (
		run ports.Run
		err error
	)
	if args.Start == "" {
		run, err = s.engine.AnimateAllFlows(runCtx)
	} else {
		run, err = s.engine.StartFlowAnimation(runCtx, args.Start)
	}
	if err != nil {
		return RunResponse{}, s.toolError(err)
	}
	return RunResponse{RunID: run.ID(), Kind: run.Kind()}, nil
}

func (s *Server) handleMermaid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d := s.engine.Diagram()
	if src := request.GetString("source", ""); src != "" {
		d = parser.Parse(src)
	}
	if d.IsEmpty() {
		return mcp.NewToolResultError(seqflow.Advisory(domain.ErrEmptyDiagram)), nil
	}

	if request.GetString("kind", "sequence") == "flowchart" {
		return mcp.NewToolResultText(graph.Flowchart(d, flow.Build(d.Connections), nil)), nil
	}
	return mcp.NewToolResultText(graph.Sequence(d)), nil
}

// toolError pairs the raw error with its user-facing advisory.
func (s *Server) toolError(err error) error {
	s.logger.Debug("mcp tool failed", "err", err)
	return fmt.Errorf("%s (%w)", seqflow.Advisory(err), err)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(diagramURI, "Loaded Diagram",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		d := s.engine.Diagram()
		if d == nil {
			return nil, domain.ErrEmptyDiagram
		}
		jsonBytes, _ := json.Marshal(d)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      diagramURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(viewURI, "Canvas View",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		t := s.engine.Table()
		if t == nil {
			return nil, errors.New("engine has no view table")
		}
		jsonBytes, _ := json.Marshal(t.Snapshot())

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      viewURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
