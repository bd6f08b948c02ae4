package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/statescript"
	"github.com/aretw0/statescript/internal/validator"
	"github.com/aretw0/statescript/pkg/adapters/memory"
	"github.com/aretw0/statescript/pkg/compiler"
	"github.com/aretw0/statescript/pkg/nodes"
	"github.com/aretw0/statescript/pkg/observability"
	"github.com/aretw0/statescript/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guardGraph = `
name: guard
nodes:
  - {id: entry, category: entry}
  - id: hostile
    category: condition
    type: nodes.HasTagNode
    data: {tag: Hostile}
  - {id: exit, category: exit}
connections:
  - {from: {node: entry, port: 0}, to: {node: hostile, port: 0}}
  - {from: {node: hostile, port: 0}, to: {node: exit, port: 0}}
  - {from: {node: hostile, port: 5}, to: {node: exit, port: 0}}
`

// watchingEngine adds a scripted Watch to a real engine.
type watchingEngine struct {
	*statescript.Engine
	WatchFunc func(ctx context.Context) (<-chan string, error)
}

func (e *watchingEngine) Watch(ctx context.Context) (<-chan string, error) {
	return e.WatchFunc(ctx)
}

func newEngine(t *testing.T, opts ...statescript.Option) *statescript.Engine {
	t.Helper()
	loader := memory.NewLoader(map[string]string{"combat/guard": guardGraph})
	eng, err := statescript.New("", append([]statescript.Option{statescript.WithLoader(loader)}, opts...)...)
	require.NoError(t, err)
	return eng
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCatalog(t *testing.T) {
	h := NewHandler(newEngine(t))

	w := do(t, h, "GET", "/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []registry.NodeType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 8)

	w = do(t, h, "GET", "/catalog?category=state", "")
	require.Equal(t, http.StatusOK, w.Code)
	var states []registry.NodeType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &states))
	require.Len(t, states, 2)
	assert.Equal(t, []string{"OnActivate", "OnDeactivate", "OnAbort", "Subgraph"}, states[0].OutputLabels)

	w = do(t, h, "GET", "/catalog?category=loop", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "GET", "/catalog/"+nodes.TypeDealDamage, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"display_name":"Deal Damage"`)

	w = do(t, h, "GET", "/catalog/nodes.Nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGraphs(t *testing.T) {
	h := NewHandler(newEngine(t))

	w := do(t, h, "GET", "/graphs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["combat/guard"]`, w.Body.String())

	w = do(t, h, "GET", "/graphs/combat/guard", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"guard"`)

	w = do(t, h, "GET", "/graphs/combat/guard?format=mermaid", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "graph TD"))
	assert.Contains(t, body, `hostile -- "True" --> exit`)
	assert.Contains(t, body, `.-x exit`)

	w = do(t, h, "GET", "/graphs/combat/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBuild(t *testing.T) {
	h := NewHandler(newEngine(t))

	w := do(t, h, "POST", "/build", guardGraph)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report compiler.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "guard", report.Graph)
	assert.Equal(t, 3, report.Nodes)
	assert.Equal(t, 2, report.Connections)
	assert.Equal(t, 1, report.Dropped)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, compiler.ReasonPortOutOfRange, report.Warnings[0].Reason)

	w = do(t, h, "POST", "/build?graph=combat/guard", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "POST", "/build", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", "/build", `{"nodes": [{"category": "exit"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", "/build", `{"nodes": [{"id": "x", "category": "action", "type": "nodes.Nope"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "nodes.Nope")
}

func TestValidate(t *testing.T) {
	h := NewHandler(newEngine(t))

	w := do(t, h, "POST", "/validate", guardGraph)
	require.Equal(t, http.StatusOK, w.Code)
	var report ValidationReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.True(t, report.Valid)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "connection hostile:5 -> exit:0: 'hostile' has 2 output ports", report.Issues[0].Message)

	w = do(t, h, "POST", "/validate", `{"nodes": [{"id": "x", "category": "action", "type": "nodes.Nope"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	report = ValidationReport{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.False(t, report.Valid)
	assert.Equal(t, validator.SeverityError, report.Issues[0].Severity)
}

func TestHealthInfoAndCORS(t *testing.T) {
	h := NewHandler(newEngine(t))

	w := do(t, h, "GET", "/health", "")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", "")
	assert.Contains(t, w.Body.String(), `"app":"statescript-http"`)
	assert.Contains(t, w.Body.String(), `"node_types":8`)

	w = do(t, h, "OPTIONS", "/build", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetrics(t *testing.T) {
	promReg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(promReg)
	require.NoError(t, err)
	h := NewHandler(newEngine(t, statescript.WithMetrics(m)), WithMetrics(promReg))

	do(t, h, "POST", "/build", guardGraph)

	w := do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `statescript_builds_total{result="ok"} 1`)

	w = do(t, NewHandler(newEngine(t)), "GET", "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEvents(t *testing.T) {
	eng := &watchingEngine{
		Engine: newEngine(t),
		WatchFunc: func(ctx context.Context) (<-chan string, error) {
			ch := make(chan string, 1)
			ch <- "combat/guard"
			close(ch)
			return ch, nil
		},
	}

	w := do(t, NewHandler(eng), "GET", "/events", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "event: ping")
	assert.Contains(t, body, "event: graph_changed\ndata: combat/guard")
}

func TestSubscribeEvents_Unsupported(t *testing.T) {
	w := do(t, NewHandler(newEngine(t)), "GET", "/events", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
