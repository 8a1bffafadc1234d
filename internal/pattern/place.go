package pattern

import (
	"errors"
	"fmt"

	"github.com/cellforge/lifegrid/internal/board"
	"github.com/cellforge/lifegrid/internal/rng"
)

// ErrPlacementInfeasible indicates a pattern that fits the board in no
// rotation.
var ErrPlacementInfeasible = errors.New("pattern: placement infeasible")

// InfeasibleError reports the unrotated pattern box against the board box.
type InfeasibleError struct {
	Pattern                 string
	PatternWidth            int
	PatternHeight           int
	BoardWidth, BoardHeight int
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("%v: %s is %dx%d, board is %dx%d",
		ErrPlacementInfeasible, e.Pattern,
		e.PatternWidth, e.PatternHeight, e.BoardWidth, e.BoardHeight)
}

func (e *InfeasibleError) Unwrap() error { return ErrPlacementInfeasible }

// Placement records where and how a pattern was stamped.
type Placement struct {
	Rotation int
	X, Y     int
	Marker   byte
}

var rotations = []int{0, 90, 180, 270}

// Place stamps p onto a copy of b at a random valid rotation and origin,
// painting alive template cells with a random marker from the alphabet.
// Blank template cells leave the board untouched, so placement only ever
// adds cells. If no rotation fits, the original board is returned unchanged
// alongside an error wrapping ErrPlacementInfeasible.
func Place(p Pattern, b board.Board, alphabet board.Alphabet, r *rng.Source) (board.Board, Placement, error) {
	bw, bh := b.Width(), b.Height()

	fitting := make([]int, 0, len(rotations))
	for _, deg := range rotations {
		rp, err := Rotate(p, deg)
		if err != nil {
			return b, Placement{}, err
		}
		if rp.Width() <= bw && rp.Height() <= bh {
			fitting = append(fitting, deg)
		}
	}
	if len(fitting) == 0 {
		return b, Placement{}, &InfeasibleError{
			Pattern:       p.Name,
			PatternWidth:  p.Width(),
			PatternHeight: p.Height(),
			BoardWidth:    bw,
			BoardHeight:   bh,
		}
	}

	deg := fitting[r.IntN(len(fitting))]
	rp, err := Rotate(p, deg)
	if err != nil {
		return b, Placement{}, err
	}

	place := Placement{
		Rotation: deg,
		X:        r.IntN(bw - rp.Width() + 1),
		Y:        r.IntN(bh - rp.Height() + 1),
		Marker:   alphabet.Pick(r),
	}

	out := b.Clone()
	for y := 0; y < rp.Height(); y++ {
		for x := 0; x < rp.Width(); x++ {
			if rp.Alive(x, y) {
				out.Set(place.X+x, place.Y+y, place.Marker)
			}
		}
	}
	return out, place, nil
}
