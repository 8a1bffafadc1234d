package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/cellforge/lifegrid/internal/board"
)

// Adapter wraps a single operation, advance, around whichever oracle is
// configured. It classifies opaque failures into the package's taxonomy and
// never retries: every failure surfaces to the caller, who decides whether
// to issue a new command.
type Adapter struct {
	oracle Oracle
}

// NewAdapter returns an adapter over the given oracle. A nil oracle is
// allowed and makes every Advance fail with ErrConfigMissing.
func NewAdapter(o Oracle) *Adapter {
	return &Adapter{oracle: o}
}

// Configured reports whether an oracle is reachable at all.
func (a *Adapter) Configured() bool { return a != nil && a.oracle != nil }

// Advance computes the next generation of b. Local validation failures
// surface as board.ErrInvalidBoard before any call; oracle failures come
// back classified as ErrResourceExceeded or ErrServiceError with the
// original message preserved. The input board is returned untouched on any
// failure.
func (a *Adapter) Advance(ctx context.Context, b board.Board) (board.Board, error) {
	if !a.Configured() {
		return b, fmt.Errorf("%w: no oracle", ErrConfigMissing)
	}
	if err := b.Validate(); err != nil {
		return b, err
	}

	out, err := a.oracle.NextGeneration(ctx, board.Encode(b))
	if err != nil {
		if errors.Is(err, board.ErrInvalidBoard) || errors.Is(err, ErrConfigMissing) {
			return b, err
		}
		return b, Classify(err)
	}

	next := board.Decode(out)
	if err := next.Validate(); err != nil {
		return b, fmt.Errorf("%w: malformed reply: %v", ErrServiceError, err)
	}
	if next.Width() != b.Width() || next.Height() != b.Height() {
		return b, fmt.Errorf("%w: reply is %dx%d, board was %dx%d",
			ErrServiceError, next.Width(), next.Height(), b.Width(), b.Height())
	}
	return next, nil
}
