package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/katalvlaran/gridpath/gridgraph"
	"github.com/katalvlaran/gridpath/server"
	"github.com/katalvlaran/gridpath/session"
)

func init() { gin.SetMode(gin.TestMode) }

type fixture struct {
	ctrl *session.Controller
	hub  *server.Hub
	srv  *server.Server
	reg  *prometheus.Registry
}

// newFixture serves a 4×6 board with the start at (0,0) and the end at (3,5).
func newFixture(t *testing.T, delay time.Duration, opts ...server.Option) *fixture {
	t.Helper()
	b, err := gridgraph.NewBoard(4, 6)
	require.NoError(t, err)
	require.NoError(t, b.SetStart(gridgraph.Pos(0, 0)))
	require.NoError(t, b.SetEnd(gridgraph.Pos(3, 5)))

	reg := prometheus.NewRegistry()
	hub := server.NewHub(nil, server.NewMetrics(reg))
	ctrl, err := session.New(b, hub, session.WithDelays(delay, delay), session.WithRegisterer(reg))
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)

	opts = append([]server.Option{server.WithGatherer(reg)}, opts...)
	return &fixture{ctrl: ctrl, hub: hub, srv: server.New(ctrl, hub, opts...), reg: reg}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, 0)
	w := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestBoard(t *testing.T) {
	f := newFixture(t, 0)
	w := f.do(t, http.MethodGet, "/api/board", "")
	require.Equal(t, http.StatusOK, w.Code)

	var v server.BoardView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, 4, v.Rows)
	assert.Equal(t, 6, v.Cols)
	assert.Equal(t, &server.Cell{Row: 0, Col: 0}, v.Start)
	assert.Equal(t, &server.Cell{Row: 3, Col: 5}, v.End)
	assert.Empty(t, v.Obstacles)
	assert.True(t, v.Reachable)
	assert.Equal(t, "idle", v.State)
	assert.Equal(t, "aStar", v.Algorithm)
	assert.Nil(t, v.Last)
}

func TestAlgorithms(t *testing.T) {
	f := newFixture(t, 0)
	w := f.do(t, http.MethodGet, "/api/algorithms", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"algorithms":["dijkstra","greedyBestFirst","aStar","bidirectionalAStar","bidirectional"],"selected":"aStar"}`,
		w.Body.String())
}

func TestActions(t *testing.T) {
	cases := []struct {
		name string
		body string
		code int
	}{
		{"not json", `{`, http.StatusBadRequest},
		{"unknown action", `{"action":"fly"}`, http.StatusBadRequest},
		{"select without name", `{"action":"select"}`, http.StatusBadRequest},
		{"toggle without cell", `{"action":"toggle"}`, http.StatusBadRequest},
		{"negative cell", `{"action":"toggle","cell":{"row":-1,"col":0}}`, http.StatusBadRequest},
		{"density out of range", `{"action":"maze","density":2}`, http.StatusBadRequest},
		{"unknown algorithm", `{"action":"select","algorithm":"teleport"}`, http.StatusUnprocessableEntity},
		{"cell off board", `{"action":"toggle","cell":{"row":9,"col":9}}`, http.StatusUnprocessableEntity},
		{"select greedy", `{"action":"select","algorithm":"greedy"}`, http.StatusOK},
		{"toggle wall", `{"action":"toggle","cell":{"row":1,"col":1}}`, http.StatusOK},
		{"stop when idle", `{"action":"stop"}`, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, 0)
			w := f.do(t, http.MethodPost, "/api/actions", tc.body)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
		})
	}
}

func TestActions_EditFlow(t *testing.T) {
	f := newFixture(t, 0)

	w := f.do(t, http.MethodPost, "/api/actions", `{"action":"toggle","cell":{"row":1,"col":1}}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Board server.BoardView `json:"board"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []server.Cell{{Row: 1, Col: 1}}, resp.Board.Obstacles)

	w = f.do(t, http.MethodPost, "/api/actions", `{"action":"setStart","cell":{"row":1,"col":1}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "cannot start on a wall")

	w = f.do(t, http.MethodPost, "/api/actions", `{"action":"maze","density":1,"seed":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, f.ctrl.Board().Obstacles(), 24)

	w = f.do(t, http.MethodPost, "/api/actions", `{"action":"start"}`)
	assert.Equal(t, http.StatusConflict, w.Code, "maze wiped the endpoints")

	w = f.do(t, http.MethodPost, "/api/actions", `{"action":"reset"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.ctrl.Board().Obstacles())
}

func TestActions_StartAndBusy(t *testing.T) {
	f := newFixture(t, time.Hour)

	w := f.do(t, http.MethodPost, "/api/actions", `{"action":"start"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"runId"`)
	assert.Equal(t, session.Running, f.ctrl.State())

	w = f.do(t, http.MethodPost, "/api/actions", `{"action":"toggle","cell":{"row":2,"col":2}}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/api/actions", `{"action":"stop"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.Idle, f.ctrl.State())

	f.ctrl.Close()
	w = f.do(t, http.MethodPost, "/api/actions", `{"action":"start"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, 0)
	f.do(t, http.MethodPost, "/api/actions", `{"action":"stop"}`)

	w := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `gridpath_server_actions_total{action="stop",result="ok"} 1`)
	assert.Contains(t, w.Body.String(), "gridpath_server_websocket_clients 0")
	assert.Contains(t, w.Body.String(), "gridpath_session_run_visited_cells_count 0")
}

// dial connects to /ws and returns the connection.
func dial(t *testing.T, f *fixture) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(f.srv.Handler())
	t.Cleanup(ts.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) server.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var e server.Event
	require.NoError(t, conn.ReadJSON(&e))
	return e
}

func TestWebsocket_RunStreamsEvents(t *testing.T) {
	f := newFixture(t, 0)
	conn := dial(t, f)

	first := read(t, conn)
	require.Equal(t, server.EventBoard, first.Type)
	require.NotNil(t, first.Board)
	assert.Equal(t, 6, first.Board.Cols)

	require.NoError(t, conn.WriteJSON(server.Action{Action: "start"}))

	counts := map[string]int{}
	var result server.Event
	for result.Type != server.EventResult {
		e := read(t, conn)
		counts[e.Type]++
		if e.Type == server.EventResult {
			result = e
		}
	}
	assert.Positive(t, counts[server.EventVisited])
	assert.Equal(t, counts[server.EventVisited], counts[server.EventCurrent])
	assert.Equal(t, 9, counts[server.EventPath])
	require.NotNil(t, result.Result)
	assert.Equal(t, "found", result.Result.Outcome)
	assert.Equal(t, 8, result.Result.Cost)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "idle", result.Board.State)
}

func TestWebsocket_Errors(t *testing.T) {
	f := newFixture(t, 0)
	conn := dial(t, f)
	read(t, conn) // board

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("nonsense")))
	e := read(t, conn)
	assert.Equal(t, server.EventError, e.Type)
	assert.Contains(t, e.Message, "malformed")

	require.NoError(t, conn.WriteJSON(server.Action{Action: "setEnd"}))
	e = read(t, conn)
	assert.Equal(t, server.EventError, e.Type)
	assert.Contains(t, e.Message, "needs a cell")
}

func TestWebsocket_RateLimited(t *testing.T) {
	f := newFixture(t, 0, server.WithActionRate(rate.Every(time.Hour), 1))
	conn := dial(t, f)
	read(t, conn) // board

	select1 := server.Action{Action: "select", Algorithm: "dijkstra"}
	require.NoError(t, conn.WriteJSON(select1))
	assert.Equal(t, server.EventBoard, read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(select1))
	e := read(t, conn)
	assert.Equal(t, server.EventError, e.Type)
	assert.Equal(t, "rate limited", e.Message)
}

func TestWebsocket_OriginCheck(t *testing.T) {
	f := newFixture(t, 0, server.WithAllowedOrigins("http://allowed.example"))
	ts := httptest.NewServer(f.srv.Handler())
	defer ts.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://allowed.example"}})
	require.NoError(t, err)
	_ = conn.Close()
}

func TestHub_ClientCount(t *testing.T) {
	f := newFixture(t, 0)
	conn := dial(t, f)
	read(t, conn)
	assert.Equal(t, 1, f.hub.Len())

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool { return f.hub.Len() == 0 }, 5*time.Second, 10*time.Millisecond)
}
