package maze

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ErrMalformedMaze matches every *MalformedMazeError through errors.Is.
var ErrMalformedMaze = errors.New("malformed maze")

// MalformedMazeError carries every structural defect found while loading a maze.
type MalformedMazeError struct {
	Source string
	Err    *multierror.Error
}

func (e *MalformedMazeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", ErrMalformedMaze, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", ErrMalformedMaze, e.Source, e.Err)
}

func (e *MalformedMazeError) Unwrap() error {
	return e.Err
}

func (e *MalformedMazeError) Is(target error) bool {
	return target == ErrMalformedMaze
}

// Problems lists the individual defects in discovery order.
func (e *MalformedMazeError) Problems() []error {
	if e.Err == nil {
		return nil
	}
	return append([]error(nil), e.Err.Errors...)
}

type problemList struct {
	merr *multierror.Error
}

func (p *problemList) add(err error) {
	p.merr = multierror.Append(p.merr, err)
}

func (p *problemList) err(source string) error {
	if p.merr == nil || len(p.merr.Errors) == 0 {
		return nil
	}
	p.merr.ErrorFormat = joinProblems
	return &MalformedMazeError{Source: source, Err: p.merr}
}

func joinProblems(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}
