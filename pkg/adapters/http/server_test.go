package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/seqflow"
	"github.com/aretw0/seqflow/internal/runtime"
	"github.com/aretw0/seqflow/pkg/adapters/memory"
	"github.com/aretw0/seqflow/pkg/codec"
	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/observability"
	"github.com/aretw0/seqflow/pkg/ports"
	"github.com/aretw0/seqflow/pkg/samples"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine  *seqflow.Engine
	streams *StreamManager
	handler http.Handler
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	streams := NewStreamManager(nil)
	eng := seqflow.New(
		seqflow.WithScheduler(&runtime.InstantScheduler{}),
		seqflow.WithLifecycleHooks(streams.Hooks()),
	)
	opts = append([]Option{WithStreams(streams)}, opts...)
	return &fixture{engine: eng, streams: streams, handler: NewHandler(eng, opts...)}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func basicSource(t *testing.T) string {
	t.Helper()
	text, ok := samples.Get("basic")
	require.True(t, ok)
	return text
}

func TestHealthAndInfo(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	info := decodeBody[map[string]string](t, w)
	assert.Equal(t, "seqflow-http", info["app"])
	assert.NotEqual(t, "unknown", info["api_version"])
}

func TestOpenAPIDocumentIsValid(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/canvas/animate"))

	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi:")
}

func TestParse(t *testing.T) {
	f := newFixture(t)
	payload, _ := json.Marshal(sourceRequest{Source: basicSource(t) + "\nthis is noise\n"})

	w := f.do(t, http.MethodPost, "/parse", string(payload))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[parseResponse](t, w)
	assert.Len(t, resp.Diagram.Entities, 3)
	assert.Len(t, resp.Diagram.Connections, 4)
	assert.Equal(t, 1, resp.Stats.Unmatched)
	assert.Equal(t, []string{"U"}, resp.Sources)
	for _, ent := range resp.Diagram.Entities {
		assert.NotEqual(t, domain.Point{}, ent.Position, "entities are laid out")
	}
}

func TestLayout_UsesRequestedCanvas(t *testing.T) {
	f := newFixture(t)
	payload, _ := json.Marshal(layoutRequest{Source: "A -> B", Width: 200, Height: 100})

	w := f.do(t, http.MethodPost, "/layout", string(payload))
	require.Equal(t, http.StatusOK, w.Code)

	d := decodeBody[domain.Diagram](t, w)
	require.Len(t, d.Entities, 2)
	for _, ent := range d.Entities {
		assert.LessOrEqual(t, ent.Position.X, 200.0)
		assert.LessOrEqual(t, ent.Position.Y, 100.0)
	}
}

func TestSamples(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/samples", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"basic"`)

	w = f.do(t, http.MethodGet, "/samples/checkout", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/samples/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	p := decodeBody[problem](t, w)
	assert.Equal(t, seqflow.Advisory(domain.ErrUnknownSample), p.Message)
}

func TestCanvas_LoadAndFindPath(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/canvas/load", `{"sample":"basic"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	loaded := decodeBody[diagramResponse](t, w)
	assert.Equal(t, []string{"U"}, loaded.Sources)

	w = f.do(t, http.MethodPost, "/canvas/path", `{"from":"U","to":"Server"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"U", "Browser", "Server"}, decodeBody[pathResponse](t, w).Path)

	w = f.do(t, http.MethodPost, "/canvas/path", `{"from":"U","to":"Ghost"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/canvas/preview/Browser", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t, []string{"Browser", "Server", "U"}, decodeBody[pathResponse](t, w).Path)

	w = f.do(t, http.MethodGet, "/canvas", "")
	require.Equal(t, http.StatusOK, w.Code)
	canvas := decodeBody[canvasResponse](t, w)
	require.NotNil(t, canvas.View)
	assert.Len(t, canvas.View.Entities, 3)
}

func TestCanvas_LoadEmptyIsUnprocessable(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/canvas/load", `{"source":"nothing here"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	p := decodeBody[problem](t, w)
	assert.Equal(t, seqflow.Advisory(domain.ErrEmptyDiagram), p.Message)

	w = f.do(t, http.MethodPost, "/canvas/load", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCanvas_AnimateRunsToCompletion(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/canvas/load", `{"sample":"basic"}`).Code)

	w := f.do(t, http.MethodPost, "/canvas/animate", `{"start":"U"}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	run := decodeBody[runResponse](t, w)
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, domain.RunFlow, run.Kind)

	assert.Eventually(t, func() bool {
		return f.engine.State() == runtime.StateIdle
	}, time.Second, 5*time.Millisecond, "run outlives the request and completes")

	w = f.do(t, http.MethodPost, "/canvas/animate", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, domain.RunAll, decodeBody[runResponse](t, w).Kind)

	w = f.do(t, http.MethodPost, "/canvas/stop", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCanvas_SetSpeedClamps(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPut, "/canvas/speed", `{"speed":100}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, runtime.ClampSpeed(100), decodeBody[map[string]float64](t, w)["speed"])

	w = f.do(t, http.MethodPut, "/canvas/speed", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiagrams_CRUD(t *testing.T) {
	f := newFixture(t)

	payload, _ := json.Marshal(sourceRequest{Source: basicSource(t)})
	w := f.do(t, http.MethodPut, "/diagrams/basic", string(payload))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/diagrams", "")
	assert.Equal(t, []string{"basic"}, decodeBody[[]string](t, w))

	w = f.do(t, http.MethodGet, "/diagrams/basic?format=mermaid", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "sequenceDiagram"))

	w = f.do(t, http.MethodGet, "/diagrams/basic?format=flowchart", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "graph LR")

	w = f.do(t, http.MethodGet, "/diagrams/basic?format=yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	d, _, err := codec.Unmarshal(w.Body.Bytes(), codec.YAML)
	require.NoError(t, err)
	assert.Len(t, d.Entities, 3)

	w = f.do(t, http.MethodGet, "/diagrams/basic?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/canvas/load", `{"diagram":"basic"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodDelete, "/diagrams/basic", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/diagrams/basic", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDiagrams_PutYAMLDocument(t *testing.T) {
	f := newFixture(t)
	d := seqflow.New().Parse("A -> B: hi")
	data, err := codec.Marshal(d, codec.YAML)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/diagrams/yaml", strings.NewReader(string(data)))
	req.Header.Set("Content-Type", "application/yaml")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[diagramResponse](t, w)
	assert.Len(t, resp.Diagram.Connections, 1)
}

func TestLibrary(t *testing.T) {
	src := memory.NewSource(map[string]string{"login": "A -> B: login"})

	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/library", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "no library configured")

	f = newFixture(t, WithLibrary(src))
	w = f.do(t, http.MethodGet, "/library", "")
	require.Equal(t, http.StatusOK, w.Code)
	docs := decodeBody[[]ports.DocumentInfo](t, w)
	require.Len(t, docs, 1)
	assert.Equal(t, "login", docs[0].ID)

	w = f.do(t, http.MethodGet, "/library/login", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A -> B: login", decodeBody[ports.Document](t, w).Source)

	w = f.do(t, http.MethodPost, "/canvas/load", `{"document":"login"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/library/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	eng := seqflow.New(
		seqflow.WithScheduler(&runtime.InstantScheduler{}),
		seqflow.WithLifecycleHooks(metrics.Hooks()),
	)
	handler := NewHandler(eng, WithMetrics(reg))

	_, err := eng.Load(context.Background(), "A -> B")
	require.NoError(t, err)
	run, err := eng.StartFlowAnimation(context.Background(), "A")
	require.NoError(t, err)
	require.NoError(t, run.Wait())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "seqflow_runs_total")
}

func TestSubscribeEvents_Canvas(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?topic=canvas", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 256)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	require.Equal(t, "event: ping", <-lines)
	require.Eventually(t, func() bool { return f.streams.Subscribers(TopicCanvas) == 1 }, time.Second, 5*time.Millisecond)

	_, err = f.engine.Load(context.Background(), "A -> B")
	require.NoError(t, err)
	run, err := f.engine.StartFlowAnimation(context.Background(), "A")
	require.NoError(t, err)
	require.NoError(t, run.Wait())

	var sawCommand, sawRunEnd bool
	timeout := time.After(2 * time.Second)
	for !sawCommand || !sawRunEnd {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "stream closed early")
			sawCommand = sawCommand || strings.Contains(line, `"type":"command"`)
			sawRunEnd = sawRunEnd || strings.Contains(line, `"outcome":"completed"`)
		case <-timeout:
			t.Fatalf("missing events: command=%v run_end=%v", sawCommand, sawRunEnd)
		}
	}
}

func TestSubscribeEvents_LibraryRequiresWatchable(t *testing.T) {
	f := newFixture(t, WithLibrary(memory.NewSource(nil)))
	w := f.do(t, http.MethodGet, "/events?topic=library", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/events?topic=weather", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type watchSource struct {
	*memory.Source
	changes chan struct{}
}

func (s *watchSource) Watch(ctx context.Context) (<-chan struct{}, error) {
	return s.changes, nil
}

func TestSubscribeEvents_LibraryReload(t *testing.T) {
	src := &watchSource{Source: memory.NewSource(nil), changes: make(chan struct{}, 1)}
	src.changes <- struct{}{}
	close(src.changes)

	f := newFixture(t, WithLibrary(src))
	w := f.do(t, http.MethodGet, "/events?topic=library", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event: ping")
	assert.Contains(t, w.Body.String(), `data: {"type":"reload"}`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(domain.ErrEngineBusy))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrPathNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrNilInput))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
