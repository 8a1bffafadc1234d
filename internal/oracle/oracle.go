// Package oracle connects the automaton to a generation service: an
// in-process engine, a net/rpc client for a remote service, and the adapter
// that classifies failures into a stable taxonomy.
package oracle

import (
	"context"

	"github.com/cellforge/lifegrid/internal/board"
	"github.com/cellforge/lifegrid/internal/life"
	"github.com/cellforge/lifegrid/internal/rng"
)

// Oracle computes the next generation of a board in its textual encoding.
// Implementations may be slow and may fail; callers never retry on their
// own.
type Oracle interface {
	NextGeneration(ctx context.Context, boardText string) (string, error)
}

// Engine is the in-process oracle. It applies the transition rule directly
// and is the reference semantics a remote deployment is expected to match.
type Engine struct {
	rand *rng.Source
}

// NewEngine returns an in-process oracle drawing tie-break randomness from r.
func NewEngine(r *rng.Source) *Engine {
	if r == nil {
		r = rng.NewAmbient()
	}
	return &Engine{rand: r}
}

func (e *Engine) NextGeneration(ctx context.Context, boardText string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	next, err := life.Next(board.Decode(boardText), e.rand)
	if err != nil {
		return "", err
	}
	return board.Encode(next), nil
}
