package board

import (
	"errors"
	"fmt"
)

// Domain errors for board operations.
var (
	// ErrInvalidBoard indicates malformed rows or non-ASCII content.
	ErrInvalidBoard = errors.New("board: invalid board")

	// ErrInvalidAlphabet indicates an unusable colony alphabet.
	ErrInvalidAlphabet = errors.New("board: invalid alphabet")
)

// InvalidBoardError carries the first offending row of a failed validation.
type InvalidBoardError struct {
	Row    int
	Reason string
}

func (e *InvalidBoardError) Error() string {
	return fmt.Sprintf("%v: row %d: %s", ErrInvalidBoard, e.Row, e.Reason)
}

func (e *InvalidBoardError) Unwrap() error { return ErrInvalidBoard }
