package maze

import (
	"bytes"
	_ "embed"
)

//go:embed default.maze
var defaultMaze []byte

// Default returns the built-in 9x10 maze used when no maze file is given.
func Default() *Grid {
	g, err := parse("default.maze", bytes.NewReader(defaultMaze))
	if err != nil {
		panic("maze: embedded default is malformed: " + err.Error())
	}
	return g
}

// Load reads path, or returns Default when path is empty.
func Load(path string) (*Grid, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
