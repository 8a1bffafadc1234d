// Package generate produces procedural starting boards.
package generate

import (
	"github.com/cellforge/lifegrid/internal/board"
	"github.com/cellforge/lifegrid/internal/rng"
)

// Random builds a fresh rectangular board. Each cell comes alive with
// probability density, tagged with a uniform draw from the alphabet.
// The result is deterministic for a seeded source.
func Random(width, height int, density float64, alphabet board.Alphabet, r *rng.Source) board.Board {
	if density < 0 {
		density = 0
	}
	if density > 1 {
		density = 1
	}

	b := board.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if r.Float64() < density {
				b.Set(x, y, alphabet.Pick(r))
			}
		}
	}
	return b
}
