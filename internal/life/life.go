// Package life implements the multi-colony Game of Life transition rule.
//
// The rule is the classic Conway B3/S23 on a finite, bounded grid (cells
// beyond the edge count as dead, no wraparound), extended with colonies:
// a surviving cell keeps its own marker, and a newborn cell inherits the
// most frequent marker among its three alive neighbors, with ties resolved
// uniformly at random. This is the contract any generation oracle, local or
// remote, is expected to satisfy.
package life

import (
	"github.com/cellforge/lifegrid/internal/board"
	"github.com/cellforge/lifegrid/internal/rng"
)

// Next computes the next generation of b. The input board must be
// rectangular and 7-bit clean; otherwise an error wrapping
// board.ErrInvalidBoard is returned and no board is produced. The input is
// never mutated and the output has identical dimensions.
//
// Randomness is used only to break birth-color ties and is drawn from r, so
// a seeded source makes the step fully deterministic.
func Next(b board.Board, r *rng.Source) (board.Board, error) {
	if err := b.Validate(); err != nil {
		return board.Board{}, err
	}

	w, h := b.Width(), b.Height()
	next := board.New(w, h)

	var markers [8]byte
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			count := neighborInfo(b, x, y, &markers)
			c := b.At(x, y)
			if c != board.Dead {
				if count == 2 || count == 3 {
					// Survival never changes color.
					next.Set(x, y, c)
				}
			} else if count == 3 {
				next.Set(x, y, dominantMarker(markers[:count], r))
			}
		}
	}
	return next, nil
}

// neighborInfo counts alive Moore neighbors of (x, y) and records their
// markers in scan order (dy ascending, then dx ascending). Positions outside
// the board are dead.
func neighborInfo(b board.Board, x, y int, markers *[8]byte) int {
	count := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if c := b.At(x+dx, y+dy); c != board.Dead {
				markers[count] = c
				count++
			}
		}
	}
	return count
}

// dominantMarker returns the most frequent marker among the given neighbor
// markers. Ties are broken uniformly at random among the tied markers, in
// first-seen order, so a fixed seed yields a fixed winner.
func dominantMarker(markers []byte, r *rng.Source) byte {
	if len(markers) == 0 {
		return board.FallbackMarker
	}
	if len(markers) == 1 {
		return markers[0]
	}

	var (
		unique [8]byte
		counts [8]int
		n      int
	)
	for _, m := range markers {
		found := false
		for i := 0; i < n; i++ {
			if unique[i] == m {
				counts[i]++
				found = true
				break
			}
		}
		if !found {
			unique[n] = m
			counts[n] = 1
			n++
		}
	}

	max := 0
	for i := 0; i < n; i++ {
		if counts[i] > max {
			max = counts[i]
		}
	}

	var winners [8]byte
	w := 0
	for i := 0; i < n; i++ {
		if counts[i] == max {
			winners[w] = unique[i]
			w++
		}
	}
	if w == 1 {
		return winners[0]
	}
	return winners[r.IntN(w)]
}
