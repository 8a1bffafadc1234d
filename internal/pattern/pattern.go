// Package pattern holds the library of named seed shapes, the rotation
// transform, and collision-aware random placement onto a board.
package pattern

import (
	"fmt"
	"strings"

	"github.com/cellforge/lifegrid/internal/board"
)

// AliveMarker is the byte used for alive cells in pattern templates.
const AliveMarker byte = 'O'

// Pattern is a named rectangular template at rotation 0. Alive cells carry
// AliveMarker; blanks are transparent when stamping.
type Pattern struct {
	Name string
	rows [][]byte
}

// New builds a pattern from a multi-line template, padding ragged rows to
// the bounding box so that rotation never indexes out of range.
func New(name, template string) Pattern {
	lines := strings.Split(template, "\n")
	// Drop a leading/trailing empty line so templates can be written as
	// indented raw string literals.
	if len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	width := 0
	for _, line := range lines {
		if len(line) > width {
			width = len(line)
		}
	}

	rows := make([][]byte, len(lines))
	for i, line := range lines {
		row := make([]byte, width)
		for x := range row {
			if x < len(line) && line[x] != board.Dead {
				row[x] = AliveMarker
			} else {
				row[x] = board.Dead
			}
		}
		rows[i] = row
	}
	return Pattern{Name: name, rows: rows}
}

// Width reports the bounding-box width. Recomputed, never cached: rotation
// swaps the box.
func (p Pattern) Width() int {
	if len(p.rows) == 0 {
		return 0
	}
	return len(p.rows[0])
}

// Height reports the bounding-box height.
func (p Pattern) Height() int { return len(p.rows) }

// Alive reports whether the template cell at (x, y) is alive.
func (p Pattern) Alive(x, y int) bool {
	if y < 0 || y >= len(p.rows) || x < 0 || x >= len(p.rows[y]) {
		return false
	}
	return p.rows[y][x] != board.Dead
}

// Cells counts alive template cells.
func (p Pattern) Cells() int {
	n := 0
	for _, row := range p.rows {
		for _, c := range row {
			if c != board.Dead {
				n++
			}
		}
	}
	return n
}

func (p Pattern) String() string {
	parts := make([]string, len(p.rows))
	for i, row := range p.rows {
		parts[i] = string(row)
	}
	return strings.Join(parts, "\n")
}

// Rotate returns a new pattern turned clockwise by degrees, one of 0, 90,
// 180 or 270. The bounding box swaps for the quarter turns.
func Rotate(p Pattern, degrees int) (Pattern, error) {
	w, h := p.Width(), p.Height()
	var rows [][]byte

	switch degrees {
	case 0:
		return p, nil
	case 90:
		rows = make([][]byte, w)
		for y := 0; y < w; y++ {
			row := make([]byte, h)
			for x := 0; x < h; x++ {
				row[x] = p.rows[h-1-x][y]
			}
			rows[y] = row
		}
	case 180:
		rows = make([][]byte, h)
		for y := 0; y < h; y++ {
			row := make([]byte, w)
			for x := 0; x < w; x++ {
				row[x] = p.rows[h-1-y][w-1-x]
			}
			rows[y] = row
		}
	case 270:
		rows = make([][]byte, w)
		for y := 0; y < w; y++ {
			row := make([]byte, h)
			for x := 0; x < h; x++ {
				row[x] = p.rows[x][w-1-y]
			}
			rows[y] = row
		}
	default:
		return Pattern{}, fmt.Errorf("pattern: unsupported rotation %d", degrees)
	}
	return Pattern{Name: p.Name, rows: rows}, nil
}
