package board

import "strings"

// Decode parses newline-separated rows into a board. Ragged input is
// accepted as-is; no padding happens here. Decode(Encode(b)) == b for any
// board decoded from rectangular text.
func Decode(text string) Board {
	if text == "" {
		return Board{}
	}
	lines := strings.Split(text, "\n")
	rows := make([][]byte, len(lines))
	for i, line := range lines {
		rows[i] = []byte(line)
	}
	return Board{rows: rows}
}

// Encode renders the board as newline-separated rows with no trailing
// separator.
func Encode(b Board) string {
	parts := make([]string, len(b.rows))
	for i, row := range b.rows {
		parts[i] = string(row)
	}
	return strings.Join(parts, "\n")
}
