package httpapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"genomaze/internal/maze"
	"genomaze/internal/model"
	"genomaze/internal/render"
	"genomaze/internal/scape"
	"genomaze/internal/stats"
	"genomaze/pkg/genomaze"
)

// Service is the subset of the client the HTTP layer needs.
type Service interface {
	Decode(ctx context.Context, req genomaze.DecodeRequest) (genomaze.DecodeResult, error)
	Evaluate(ctx context.Context, req genomaze.DecodeRequest, lengthPenalty float64) (genomaze.EvaluateResult, error)
	Runs(ctx context.Context, req genomaze.RunsRequest) ([]genomaze.RunItem, error)
	Frame(ctx context.Context, ref genomaze.RunRef) (render.Frame, *maze.Grid, error)
	Lineage(ctx context.Context, ref genomaze.RunRef) ([]model.LineageRecord, error)
}

type GenomeRequest struct {
	Genome        []float64 `json:"genome"`
	LengthPenalty float64   `json:"length_penalty"`
}

type MazeResponse struct {
	Rows     int           `json:"rows"`
	Cols     int           `json:"cols"`
	Start    maze.Position `json:"start"`
	Goal     maze.Position `json:"goal"`
	MaxDist  float64       `json:"max_dist"`
	Lines    []string      `json:"lines"`
	Analysis maze.Analysis `json:"analysis"`
}

type DecodeResponse struct {
	Path             []maze.Position `json:"path"`
	DeadEnd          bool            `json:"dead_end"`
	DomainViolations int             `json:"domain_violations"`
	Clamped          int             `json:"clamped"`
}

type FitnessResponse struct {
	DecodeResponse
	Fitness  float64 `json:"fitness"`
	MaxDist  float64 `json:"max_dist"`
	Distance int     `json:"distance"`
}

type FrameResponse struct {
	render.Frame
	ASCII []string `json:"ascii"`
}

// MazeController serves decode and fitness queries against one maze.
type MazeController struct {
	grid    *maze.Grid
	policy  maze.EdgePolicy
	service Service
}

func NewMazeController(grid *maze.Grid, policy maze.EdgePolicy, service Service) *MazeController {
	return &MazeController{grid: grid, policy: policy, service: service}
}

func (c *MazeController) Register(route *gin.RouterGroup) {
	route.GET("/maze", c.describe)
	route.POST("/decode", c.decode)
	route.POST("/fitness", c.fitness)
}

func (c *MazeController) describe(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, MazeResponse{
		Rows:     c.grid.Rows(),
		Cols:     c.grid.Cols(),
		Start:    c.grid.Start(),
		Goal:     c.grid.End(),
		MaxDist:  c.grid.MaxDist(),
		Lines:    c.grid.Lines(),
		Analysis: maze.Analyze(c.grid, c.policy),
	})
}

func (c *MazeController) decode(ctx *gin.Context) {
	var request GenomeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := c.service.Decode(ctx.Request.Context(), c.decodeRequest(request))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, toDecodeResponse(res))
}

func (c *MazeController) fitness(ctx *gin.Context) {
	var request GenomeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.LengthPenalty < 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "length_penalty must be >= 0"})
		return
	}

	res, err := c.service.Evaluate(ctx.Request.Context(), c.decodeRequest(request), request.LengthPenalty)
	if errors.Is(err, scape.ErrEmptyPath) {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, FitnessResponse{
		DecodeResponse: toDecodeResponse(res.DecodeResult),
		Fitness:        res.Fitness,
		MaxDist:        res.MaxDist,
		Distance:       res.Distance,
	})
}

func (c *MazeController) decodeRequest(request GenomeRequest) genomaze.DecodeRequest {
	return genomaze.DecodeRequest{
		Grid:       c.grid,
		EdgePolicy: c.policy.String(),
		Genome:     request.Genome,
	}
}

// RunController exposes persisted runs.
type RunController struct {
	service Service
}

func NewRunController(service Service) *RunController {
	return &RunController{service: service}
}

func (c *RunController) Register(route *gin.RouterGroup) {
	runs := route.Group("/runs")
	{
		runs.GET("", c.list)
		runs.GET("/:id/frame", c.frame)
		runs.GET("/:id/lineage", c.lineage)
	}
}

func (c *RunController) list(ctx *gin.Context) {
	items, err := c.service.Runs(ctx.Request.Context(), genomaze.RunsRequest{})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"runs": items})
}

// runRef reads the :id parameter; "latest" names the most recent run.
func runRef(ctx *gin.Context) genomaze.RunRef {
	id := ctx.Param("id")
	if id == "latest" {
		return genomaze.RunRef{Latest: true}
	}
	return genomaze.RunRef{RunID: id}
}

func runErrorStatus(err error) int {
	switch {
	case errors.Is(err, stats.ErrInvalidRunID):
		return http.StatusBadRequest
	case errors.Is(err, genomaze.ErrNoRuns), errors.Is(err, genomaze.ErrRunNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (c *RunController) frame(ctx *gin.Context) {
	frame, grid, err := c.service.Frame(ctx.Request.Context(), runRef(ctx))
	if err != nil {
		ctx.JSON(runErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := render.WriteASCII(&buf, grid, frame); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, FrameResponse{
		Frame: frame,
		ASCII: strings.Split(strings.TrimRight(buf.String(), "\n"), "\n"),
	})
}

func (c *RunController) lineage(ctx *gin.Context) {
	lineage, err := c.service.Lineage(ctx.Request.Context(), runRef(ctx))
	if err != nil {
		ctx.JSON(runErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"lineage": lineage})
}

func toDecodeResponse(res genomaze.DecodeResult) DecodeResponse {
	path := []maze.Position(res.Path)
	if path == nil {
		path = []maze.Position{}
	}
	return DecodeResponse{
		Path:             path,
		DeadEnd:          res.DeadEnd,
		DomainViolations: res.DomainViolations,
		Clamped:          res.Clamped,
	}
}
