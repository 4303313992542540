package maze

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadFile reads a maze file: one row per line, one decimal digit per cell.
func LoadFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parse(path, f)
}

func Parse(r io.Reader) (*Grid, error) {
	return parse("", r)
}

// FromStrings builds a grid from row literals such as "2011".
func FromStrings(rows ...string) (*Grid, error) {
	return Parse(strings.NewReader(strings.Join(rows, "\n")))
}

func parse(source string, r io.Reader) (*Grid, error) {
	problems := &problemList{}
	rows := make([][]Cell, 0, 32)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		row := make([]Cell, 0, len(line))
		for col, ch := range line {
			if ch < '0' || ch > '9' {
				problems.add(fmt.Errorf("line %d col %d: %q is not a digit", lineNo, col+1, ch))
				continue
			}
			row = append(row, Cell(ch-'0'))
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read maze %s: %w", source, err)
	}

	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	if err := problems.err(source); err != nil {
		return nil, err
	}
	return build(source, rows)
}
