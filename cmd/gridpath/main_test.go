package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gridpath/config"
	"github.com/katalvlaran/gridpath/gridgraph"
	"github.com/katalvlaran/gridpath/pathfind"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_BoardFile(t *testing.T) {
	board := writeFile(t, "board.txt", "S.#\n...\n..E\n\n")

	out, err := execute(t, "run", "--board", board, "-a", "dijkstra", "--no-delay")
	require.NoError(t, err)
	assert.Equal(t, "So#\n*oo\n**E\nalgorithm=dijkstra outcome=found visited=8 cost=4\n", out)
}

func TestRun_Trace(t *testing.T) {
	board := writeFile(t, "board.txt", "S.#\n.#.\n..E\n")

	out, err := execute(t, "run", "--board", board, "-a", "dijkstra", "--no-delay", "--trace")
	require.NoError(t, err)
	assert.Equal(t, "So#\n*#.\n**E\n"+
		"algorithm=dijkstra outcome=found visited=6 cost=4\n"+
		"visited: (0,0) (1,0) (0,1) (2,0) (2,1) (2,2)\n"+
		"path: (2,2) (2,1) (2,0) (1,0) (0,0)\n", out)
}

func TestRun_EmptyGrid(t *testing.T) {
	out, err := execute(t, "run", "--rows", "3", "--cols", "4", "-a", "greedy")
	require.NoError(t, err)
	assert.Contains(t, out, "algorithm=greedyBestFirst outcome=found")
	assert.Contains(t, out, "cost=5")
}

func TestRun_FullMazeIsExhausted(t *testing.T) {
	out, err := execute(t, "run", "--maze", "--rows", "3", "--cols", "3", "--density", "1")
	require.NoError(t, err)
	// only the corners are opened, so the start is walled in
	assert.Contains(t, out, "S##\n###\n##E\n")
	assert.Contains(t, out, "outcome=exhausted visited=1 regions=2\n")
}

func TestRun_SolvableMaze(t *testing.T) {
	out, err := execute(t, "run", "--maze", "--rows", "3", "--cols", "3", "--density", "1", "--solvable", "-a", "dijkstra")
	require.NoError(t, err)
	assert.Contains(t, out, "outcome=found")
	assert.Contains(t, out, "cost=4")
}

func TestRun_Errors(t *testing.T) {
	_, err := execute(t, "run", "-a", "teleport")
	require.ErrorIs(t, err, pathfind.ErrUnknownAlgorithm)

	_, err = execute(t, "run", "--board", writeFile(t, "b.txt", "S.\n...\n"))
	require.ErrorIs(t, err, gridgraph.ErrNonRectangular)

	_, err = execute(t, "run", "--board", writeFile(t, "b.txt", "S..\n...\n"))
	require.ErrorIs(t, err, pathfind.ErrMissingEndpoints)

	_, err = execute(t, "run", "--maze", "--density", "3")
	require.Error(t, err)

	_, err = execute(t, "--log-level", "loud", "run")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "algorithm: aStar")
	assert.Contains(t, out, "rows: 20")

	path := writeFile(t, "gridpath.yaml", "algorithm: bidirectional\ngrid: {rows: 5, cols: 7}\n")
	out, err = execute(t, "--config", path, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "algorithm: bidirectional")
	assert.Contains(t, out, "rows: 5")

	_, err = execute(t, "--config", writeFile(t, "bad.yaml", "grid: {rows: 0, cols: -1}\nbogus: 1\n"), "config")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRun_UsesConfigAlgorithm(t *testing.T) {
	path := writeFile(t, "gridpath.yaml", "algorithm: bidirectional\ngrid: {rows: 1, cols: 5}\n")
	out, err := execute(t, "--config", path, "run")
	require.NoError(t, err)
	assert.Equal(t, "S***E\nalgorithm=bidirectional outcome=found visited=4 cost=4\n", out)
}

func newTestApp(t *testing.T, yaml string) *app {
	t.Helper()
	a := &app{}
	if yaml != "" {
		a.cfgPath = writeFile(t, "gridpath.yaml", yaml)
	}
	var sink bytes.Buffer
	require.NoError(t, a.load(&sink))
	return a
}

func TestNewServer_Routes(t *testing.T) {
	a := newTestApp(t, "grid: {rows: 3, cols: 4}\nmetrics: {enabled: true}\nanimation: {visit_delay: 1ms, path_delay: 1ms}\n")
	srv, ctrl, err := a.newServer(boardFlags{density: -1}, nil)
	require.NoError(t, err)
	defer ctrl.Close()

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/board", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var board struct {
		Rows, Cols int
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	assert.Equal(t, 3, board.Rows)
	assert.Equal(t, 4, board.Cols)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestNewServer_MetricsDisabled(t *testing.T) {
	a := newTestApp(t, "")
	srv, ctrl, err := a.newServer(boardFlags{density: -1, rows: 2, cols: 2}, nil)
	require.NoError(t, err)
	defer ctrl.Close()

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReload_AppliesDelaysAndLevel(t *testing.T) {
	a := newTestApp(t, "log: {level: info}\n")
	_, ctrl, err := a.newServer(boardFlags{density: -1, rows: 2, cols: 2}, nil)
	require.NoError(t, err)
	defer ctrl.Close()

	c := config.Default()
	c.Log.Level = "debug"
	c.Animation.VisitDelay = time.Hour
	a.reload(ctrl, c)
	assert.Equal(t, "DEBUG", a.level.Level().String())

	// the next run is paced by the reloaded delay
	h, err := ctrl.Start(context.Background())
	require.NoError(t, err)
	select {
	case <-h.Done():
		t.Fatal("run finished despite an hour-long visit delay")
	case <-time.After(50 * time.Millisecond):
	}
	ctrl.Stop()
}

func TestServe_StopsWithContext(t *testing.T) {
	a := newTestApp(t, "server: {addr: \"127.0.0.1:0\"}\n")
	srv, ctrl, err := a.newServer(boardFlags{density: -1, rows: 2, cols: 2}, nil)
	require.NoError(t, err)
	defer ctrl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- a.serve(ctx, srv, ctrl) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return")
	}
}

func TestReadBoard_Missing(t *testing.T) {
	_, err := readBoard(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "nope.txt"))
}
