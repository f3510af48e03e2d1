package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/aretw0/seqflow"
	"github.com/aretw0/seqflow/internal/presentation/graph"
	"github.com/aretw0/seqflow/pkg/adapters/memory"
	"github.com/aretw0/seqflow/pkg/codec"
	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/flow"
	"github.com/aretw0/seqflow/pkg/layout"
	"github.com/aretw0/seqflow/pkg/parser"
	"github.com/aretw0/seqflow/pkg/ports"
	"github.com/aretw0/seqflow/pkg/render"
	"github.com/aretw0/seqflow/pkg/samples"
	"github.com/aretw0/seqflow/pkg/workspace"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds request bodies; diagrams are small documents.
const maxBodyBytes = 1 << 20

// Engine is the animation surface the server drives.
type Engine interface {
	ports.Animator
	LoadDiagram(ctx context.Context, d *domain.Diagram) error
	Diagram() *domain.Diagram
	Sources() []string
	Speed() float64
	Table() *render.Table
}

// Server serves the parse, storage and live-canvas API.
type Server struct {
	Engine    Engine
	Workspace *workspace.Manager
	Library   ports.DiagramSource
	Streams   *StreamManager
	Gatherer  prometheus.Gatherer

	width, height float64
	logger        *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithWorkspace sets the diagram manager. Defaults to an in-memory store.
func WithWorkspace(m *workspace.Manager) Option {
	return func(s *Server) { s.Workspace = m }
}

// WithLibrary exposes a read-only document library.
func WithLibrary(src ports.DiagramSource) Option {
	return func(s *Server) { s.Library = src }
}

// WithStreams shares a StreamManager whose Hooks were given to the engine.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithMetrics serves g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.Gatherer = g }
}

// WithCanvas sets the layout size used by /parse and /layout.
func WithCanvas(width, height float64) Option {
	return func(s *Server) {
		if width > 0 && height > 0 {
			s.width, s.height = width, height
		}
	}
}

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a Server around engine.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		Engine: engine,
		width:  seqflow.DefaultCanvasWidth,
		height: seqflow.DefaultCanvasHeight,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Workspace == nil {
		s.Workspace = workspace.NewManager(memory.NewStore(), workspace.WithLogger(s.logger))
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	return s
}

// NewHandler creates the HTTP handler for engine. Canvas commands are
// streamed to /events for as long as the handler lives.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := NewServer(engine, opts...)
	if t := engine.Table(); t != nil {
		s.Streams.Attach(t)
	}
	return s.Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(RawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/parse", s.Parse)
	r.Post("/layout", s.Layout)

	r.Get("/samples", s.ListSamples)
	r.Get("/samples/{name}", s.GetSample)

	r.Get("/library", s.ListLibrary)
	r.Get("/library/{id}", s.GetLibraryDocument)

	r.Route("/diagrams", func(r chi.Router) {
		r.Get("/", s.ListDiagrams)
		r.Get("/{id}", s.GetDiagram)
		r.Put("/{id}", s.PutDiagram)
		r.Delete("/{id}", s.DeleteDiagram)
	})

	r.Route("/canvas", func(r chi.Router) {
		r.Get("/", s.GetCanvas)
		r.Post("/load", s.LoadCanvas)
		r.Post("/animate", s.Animate)
		r.Post("/path", s.Path)
		r.Get("/preview/{id}", s.Preview)
		r.Post("/stop", s.Stop)
		r.Put("/speed", s.SetSpeed)
	})

	r.Get("/events", s.SubscribeEvents)
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>seqflow API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// -- Request and response bodies --

type sourceRequest struct {
	Source string `json:"source"`
}

type layoutRequest struct {
	Source string  `json:"source"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type loadRequest struct {
	Source   string `json:"source"`
	Sample   string `json:"sample"`
	Diagram  string `json:"diagram"`
	Document string `json:"document"`
}

type pathRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Animate bool   `json:"animate"`
}

type speedRequest struct {
	Speed *float64 `json:"speed"`
}

type animateRequest struct {
	Start string `json:"start"`
}

type parseResponse struct {
	Diagram *domain.Diagram `json:"diagram"`
	Stats   parser.Stats    `json:"stats"`
	Sources []string        `json:"sources"`
}

type diagramResponse struct {
	ID       string          `json:"id,omitempty"`
	Diagram  *domain.Diagram `json:"diagram"`
	Sources  []string        `json:"sources,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

type runResponse struct {
	RunID string         `json:"run_id"`
	Kind  domain.RunKind `json:"kind"`
}

type pathResponse struct {
	Path  []string `json:"path"`
	RunID string   `json:"run_id,omitempty"`
}

type canvasResponse struct {
	Diagram *domain.Diagram `json:"diagram"`
	View    *render.View    `json:"view,omitempty"`
	Speed   float64         `json:"speed"`
	Sources []string        `json:"sources"`
}

type problem struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// -- Handlers --

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSwagger(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "seqflow-http",
		"version":     strings.TrimSpace(seqflow.Version),
		"api_version": apiVersion,
	})
}

// Parse handles POST /parse.
func (s *Server) Parse(w http.ResponseWriter, r *http.Request) {
	var body sourceRequest
	if !s.decode(w, r, &body) {
		return
	}
	d, stats := parser.ParseWithStats(body.Source)
	layout.AutoLayout(d.Entities, s.width, s.height)
	s.writeJSON(w, http.StatusOK, parseResponse{
		Diagram: d,
		Stats:   stats,
		Sources: flow.Build(d.Connections).Sources(),
	})
}

// Layout handles POST /layout.
func (s *Server) Layout(w http.ResponseWriter, r *http.Request) {
	var body layoutRequest
	if !s.decode(w, r, &body) {
		return
	}
	width, height := body.Width, body.Height
	if width <= 0 || height <= 0 {
		width, height = s.width, s.height
	}
	d := parser.Parse(body.Source)
	layout.AutoLayout(d.Entities, width, height)
	s.writeJSON(w, http.StatusOK, d)
}

// ListSamples handles GET /samples.
func (s *Server) ListSamples(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"default": samples.Default, "samples": samples.Names()})
}

// GetSample handles GET /samples/{name}.
func (s *Server) GetSample(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	text, ok := samples.Get(name)
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: %s", domain.ErrUnknownSample, name))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"name": name, "source": text})
}

// ListLibrary handles GET /library.
func (s *Server) ListLibrary(w http.ResponseWriter, r *http.Request) {
	if s.Library == nil {
		s.writeError(w, r, errNoLibrary)
		return
	}
	docs, err := s.Library.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, docs)
}

// GetLibraryDocument handles GET /library/{id}.
func (s *Server) GetLibraryDocument(w http.ResponseWriter, r *http.Request) {
	if s.Library == nil {
		s.writeError(w, r, errNoLibrary)
		return
	}
	doc, err := s.Library.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// ListDiagrams handles GET /diagrams.
func (s *Server) ListDiagrams(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Workspace.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetDiagram handles GET /diagrams/{id}?format=.
func (s *Server) GetDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := s.Workspace.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		s.writeJSON(w, http.StatusOK, d)
	case "mermaid":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, graph.Sequence(d))
	case "flowchart":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, graph.Flowchart(d, flow.Build(d.Connections), nil))
	default:
		f, err := codec.ParseFormat(format)
		if err != nil {
			s.writeProblem(w, http.StatusBadRequest, err)
			return
		}
		data, err := codec.Marshal(d, f)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentType(f))
		w.Write(data)
	}
}

// PutDiagram handles PUT /diagrams/{id}. The body is either {"source": text}
// or a diagram document in JSON, YAML or msgpack (by Content-Type).
func (s *Server) PutDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeProblem(w, http.StatusBadRequest, err)
		return
	}

	d, warnings, err := s.decodeDiagram(r.Header.Get("Content-Type"), data)
	if err != nil {
		s.writeProblem(w, http.StatusBadRequest, err)
		return
	}
	if d.IsEmpty() {
		s.writeError(w, r, domain.ErrEmptyDiagram)
		return
	}

	if err := s.Workspace.Save(r.Context(), id, d); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := diagramResponse{ID: id, Diagram: d}
	for _, warn := range warnings {
		resp.Warnings = append(resp.Warnings, warn.Error())
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) decodeDiagram(header string, data []byte) (*domain.Diagram, codec.Warnings, error) {
	mediaType, _, _ := mime.ParseMediaType(header)
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return codec.Unmarshal(data, codec.YAML)
	case "application/msgpack", "application/x-msgpack", "application/vnd.msgpack":
		return codec.Unmarshal(data, codec.MsgPack)
	case "text/plain":
		return s.parsed(string(data)), nil, nil
	}

	var src sourceRequest
	if err := json.Unmarshal(data, &src); err == nil && src.Source != "" {
		return s.parsed(src.Source), nil, nil
	}
	return codec.Unmarshal(data, codec.JSON)
}

func (s *Server) parsed(text string) *domain.Diagram {
	d := parser.Parse(text)
	layout.AutoLayout(d.Entities, s.width, s.height)
	return d
}

// DeleteDiagram handles DELETE /diagrams/{id}.
func (s *Server) DeleteDiagram(w http.ResponseWriter, r *http.Request) {
	if err := s.Workspace.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCanvas handles GET /canvas.
func (s *Server) GetCanvas(w http.ResponseWriter, r *http.Request) {
	resp := canvasResponse{
		Diagram: s.Engine.Diagram(),
		Speed:   s.Engine.Speed(),
		Sources: s.Engine.Sources(),
	}
	if t := s.Engine.Table(); t != nil {
		view := t.Snapshot()
		resp.View = &view
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// LoadCanvas handles POST /canvas/load.
func (s *Server) LoadCanvas(w http.ResponseWriter, r *http.Request) {
	var body loadRequest
	if !s.decode(w, r, &body) {
		return
	}
	ctx := r.Context()

	var (
		d   *domain.Diagram
		err error
	)
	switch {
	case body.Source != "":
		d, err = s.Engine.Load(ctx, body.Source)
	case body.Sample != "":
		text, ok := samples.Get(body.Sample)
		if !ok {
			err = fmt.Errorf("%w: %s", domain.ErrUnknownSample, body.Sample)
			break
		}
		d, err = s.Engine.Load(ctx, text)
	case body.Diagram != "":
		if d, err = s.Workspace.Load(ctx, body.Diagram); err == nil {
			err = s.Engine.LoadDiagram(ctx, d)
		}
	case body.Document != "":
		if s.Library == nil {
			err = errNoLibrary
			break
		}
		var doc *ports.Document
		if doc, err = s.Library.Get(ctx, body.Document); err == nil {
			d, err = s.Engine.Load(ctx, doc.Source)
		}
	default:
		s.writeProblem(w, http.StatusBadRequest, errors.New("one of source, sample, diagram or document is required"))
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, diagramResponse{Diagram: d, Sources: s.Engine.Sources()})
}

// Animate handles POST /canvas/animate. An empty start animates every flow.
func (s *Server) Animate(w http.ResponseWriter, r *http.Request) {
	var body animateRequest
	if r.ContentLength != 0 && !s.decode(w, r, &body) {
		return
	}

	// The run outlives the request.
	ctx := context.WithoutCancel(r.Context())
	var (
		run ports.Run
		err error
	)
	if body.Start == "" {
		run, err = s.Engine.AnimateAllFlows(ctx)
	} else {
		run, err = s.Engine.StartFlowAnimation(ctx, body.Start)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, runResponse{RunID: run.ID(), Kind: run.Kind()})
}

// Path handles POST /canvas/path.
func (s *Server) Path(w http.ResponseWriter, r *http.Request) {
	var body pathRequest
	if !s.decode(w, r, &body) {
		return
	}
	path, err := s.Engine.FindPath(body.From, body.To)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := pathResponse{Path: path}
	if body.Animate {
		run, err := s.Engine.HighlightPath(context.WithoutCancel(r.Context()), body.From, body.To)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.RunID = run.ID()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Preview handles GET /canvas/preview/{id}.
func (s *Server) Preview(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, pathResponse{Path: s.Engine.PreviewPath(chi.URLParam(r, "id"))})
}

// Stop handles POST /canvas/stop.
func (s *Server) Stop(w http.ResponseWriter, r *http.Request) {
	s.Engine.StopAnimation()
	w.WriteHeader(http.StatusNoContent)
}

// SetSpeed handles PUT /canvas/speed.
func (s *Server) SetSpeed(w http.ResponseWriter, r *http.Request) {
	var body speedRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Speed == nil {
		s.writeProblem(w, http.StatusBadRequest, errors.New("speed is required"))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]float64{"speed": s.Engine.SetSpeed(*body.Speed)})
}

// SubscribeEvents handles GET /events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = TopicCanvas
	}

	var (
		events <-chan string
		cancel = func() {}
	)
	switch topic {
	case TopicCanvas:
		events, cancel = s.Streams.Subscribe(topic)
	case TopicLibrary:
		watchable, ok := s.Library.(ports.Watchable)
		if !ok {
			s.writeProblem(w, http.StatusNotFound, errors.New("library does not support watching"))
			return
		}
		changes, err := watchable.Watch(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		events = reloads(r.Context(), changes)
	default:
		s.writeProblem(w, http.StatusBadRequest, fmt.Errorf("unknown topic %q", topic))
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("sse client connected", "topic", topic)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("sse client disconnected", "topic", topic)
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// reloads turns library change signals into reload events.
func reloads(ctx context.Context, changes <-chan struct{}) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		for range changes {
			select {
			case out <- `{"type":"reload"}`:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// -- Helpers --

var errNoLibrary = fmt.Errorf("%w: no library configured", domain.ErrDiagramNotFound)

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		s.writeProblem(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
	}
	s.writeProblem(w, status, err)
}

func (s *Server) writeProblem(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, problem{Error: err.Error(), Message: seqflow.Advisory(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEntityNotFound),
		errors.Is(err, domain.ErrPathNotFound),
		errors.Is(err, domain.ErrDiagramNotFound),
		errors.Is(err, domain.ErrUnknownSample):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEngineBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyDiagram):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNilInput):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func contentType(f codec.Format) string {
	switch f {
	case codec.YAML:
		return "application/yaml"
	case codec.MsgPack:
		return "application/msgpack"
	}
	return "application/json"
}
