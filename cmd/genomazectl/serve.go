package main

import (
	"context"
	"flag"

	"github.com/gin-gonic/gin"

	"genomaze/internal/httpapi"
	"genomaze/internal/maze"
)

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	s := bindSettings(fs, true)
	addr := fs.String("addr", "", "listen address (default from config)")
	mazePath := fs.String("maze", "", "maze served by /maze, /decode and /fitness (default from config)")
	edgePolicy := fs.String("edge-policy", "", "edge policy: inclusive|legacy (default from config)")
	debug := fs.Bool("debug", false, "run gin in debug mode")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := s.load()
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	if *mazePath != "" {
		cfg.Maze.Path = *mazePath
	}
	if *edgePolicy != "" {
		cfg.Maze.EdgePolicy = *edgePolicy
	}

	grid, err := maze.Load(cfg.Maze.Path)
	if err != nil {
		return err
	}
	policy, err := maze.ParseEdgePolicy(cfg.Maze.EdgePolicy)
	if err != nil {
		return err
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	if !*debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.Config{
		Addr:    cfg.HTTP.Addr,
		BaseURL: "/api",
		Controllers: []httpapi.Controller{
			httpapi.NewMazeController(grid, policy, client),
			httpapi.NewRunController(client),
		},
		Logger: logger,
	})
	return router.Run(ctx)
}
