package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genomaze/internal/maze"
	"genomaze/internal/model"
	"genomaze/pkg/genomaze"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func scenarioGrid(t *testing.T) *maze.Grid {
	t.Helper()
	grid, err := maze.FromStrings(
		"1110",
		"0111",
		"2011",
		"1113",
	)
	require.NoError(t, err)
	return grid
}

func newTestServer(t *testing.T, grid *maze.Grid) (*gin.Engine, *genomaze.Client) {
	t.Helper()
	client, err := genomaze.New(genomaze.Options{
		StoreKind:     "memory",
		BenchmarksDir: t.TempDir(),
		ExportsDir:    filepath.Join(t.TempDir(), "exports"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	router := NewRouter(Config{
		BaseURL: "/api",
		Controllers: []Controller{
			NewMazeController(grid, maze.EdgeInclusive, client),
			NewRunController(client),
		},
	})
	return router.Handler(), client
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMazeDescribe(t *testing.T) {
	handler, _ := newTestServer(t, scenarioGrid(t))

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/maze", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got MazeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 4, got.Rows)
	assert.Equal(t, 4, got.Cols)
	assert.Equal(t, maze.Position{Row: 2, Col: 0}, got.Start)
	assert.Equal(t, maze.Position{Row: 3, Col: 3}, got.Goal)
	assert.Equal(t, 8.0, got.MaxDist)
	assert.Equal(t, []string{"1110", "0111", "2011", "1113"}, got.Lines)
	assert.True(t, got.Analysis.Reachable)
}

func TestDecodeEndpoint(t *testing.T) {
	handler, _ := newTestServer(t, scenarioGrid(t))

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/decode", GenomeRequest{Genome: []float64{0.1, 0.1, 0.1}})
	require.Equal(t, http.StatusOK, rec.Code)

	var got DecodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []maze.Position{{Row: 3, Col: 0}, {Row: 3, Col: 1}, {Row: 3, Col: 2}}, got.Path)
	assert.Zero(t, got.DomainViolations)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/decode", GenomeRequest{})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got.Path)
}

func TestDecodeRejectsMalformedBody(t *testing.T) {
	handler, _ := newTestServer(t, scenarioGrid(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/decode", bytes.NewBufferString(`{"genome": "nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFitnessEndpoint(t *testing.T) {
	handler, _ := newTestServer(t, scenarioGrid(t))

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/fitness", GenomeRequest{Genome: []float64{0.1, 0.1, 0.1}})
	require.Equal(t, http.StatusOK, rec.Code)

	var got FitnessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 7.0, got.Fitness)
	assert.Equal(t, 8.0, got.MaxDist)
	assert.Equal(t, 1, got.Distance)
	assert.Len(t, got.Path, 3)
}

func TestFitnessEndpointEmptyPath(t *testing.T) {
	handler, _ := newTestServer(t, scenarioGrid(t))

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/fitness", GenomeRequest{Genome: []float64{}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/fitness", GenomeRequest{Genome: []float64{0.1}, LengthPenalty: -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunFrameEndpoint(t *testing.T) {
	grid, err := maze.FromStrings("2113")
	require.NoError(t, err)
	handler, client := newTestServer(t, grid)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/runs/latest/frame", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	summary, err := client.Run(context.Background(), genomaze.RunRequest{
		Grid:         grid,
		Population:   6,
		GenomeLength: 8,
		Generations:  5,
		EliteCount:   1,
		Workers:      2,
		Seed:         11,
	})
	require.NoError(t, err)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), summary.RunID)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/runs/"+summary.RunID+"/frame", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got FrameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Generation)
	assert.Equal(t, 5.0, got.BestFitness)
	require.Len(t, got.ASCII, 2)
	assert.Equal(t, "S**G", got.ASCII[1])

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/runs/missing/frame", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/runs/a..b/frame", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/runs/latest/lineage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lineage struct {
		Lineage []model.LineageRecord `json:"lineage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lineage))
	assert.Len(t, lineage.Lineage, 6)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/runs/missing/lineage", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
