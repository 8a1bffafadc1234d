package board

// Dead is the only byte that denotes an empty cell.
const Dead byte = ' '

// FallbackMarker is painted when a caller must synthesize an alive cell but
// has no alphabet to draw from.
const FallbackMarker byte = 'O'

// Board is a grid of ASCII cells in row-major order. A blank byte is a dead
// cell; any other byte is an alive cell tagged with its colony marker.
// Rows may be ragged after decoding arbitrary text; readers treat cells past
// the end of a short row as dead.
type Board struct {
	rows [][]byte
}

// New returns a blank rectangular board of the given dimensions.
func New(width, height int) Board {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	rows := make([][]byte, height)
	for y := range rows {
		row := make([]byte, width)
		for x := range row {
			row[x] = Dead
		}
		rows[y] = row
	}
	return Board{rows: rows}
}

// Width reports the declared width: the length of the first row.
func (b Board) Width() int {
	if len(b.rows) == 0 {
		return 0
	}
	return len(b.rows[0])
}

// Height reports the number of rows.
func (b Board) Height() int { return len(b.rows) }

// At returns the cell at (x, y), or Dead for any out-of-range position,
// including positions past the end of a ragged row.
func (b Board) At(x, y int) byte {
	if y < 0 || y >= len(b.rows) {
		return Dead
	}
	row := b.rows[y]
	if x < 0 || x >= len(row) {
		return Dead
	}
	return row[x]
}

// Set writes a cell in place. Out-of-range positions are ignored.
func (b Board) Set(x, y int, c byte) {
	if y < 0 || y >= len(b.rows) {
		return
	}
	row := b.rows[y]
	if x < 0 || x >= len(row) {
		return
	}
	row[x] = c
}

// Alive reports whether the cell at (x, y) is alive.
func (b Board) Alive(x, y int) bool { return b.At(x, y) != Dead }

// Clone returns a deep copy.
func (b Board) Clone() Board {
	rows := make([][]byte, len(b.rows))
	for y, row := range b.rows {
		rows[y] = append([]byte(nil), row...)
	}
	return Board{rows: rows}
}

// Equal reports whether two boards have identical rows, byte for byte.
func (b Board) Equal(other Board) bool {
	if len(b.rows) != len(other.rows) {
		return false
	}
	for y, row := range b.rows {
		if string(row) != string(other.rows[y]) {
			return false
		}
	}
	return true
}

// Population counts alive cells.
func (b Board) Population() int {
	n := 0
	for _, row := range b.rows {
		for _, c := range row {
			if c != Dead {
				n++
			}
		}
	}
	return n
}

// Validate checks that the board is rectangular and 7-bit clean. It returns
// an error wrapping ErrInvalidBoard on the first violation and never mutates
// the board.
func (b Board) Validate() error {
	width := b.Width()
	for y, row := range b.rows {
		if len(row) != width {
			return &InvalidBoardError{
				Row:    y,
				Reason: "row length differs from declared width",
			}
		}
		for _, c := range row {
			if c > 127 {
				return &InvalidBoardError{
					Row:    y,
					Reason: "byte outside ASCII range",
				}
			}
		}
	}
	return nil
}
