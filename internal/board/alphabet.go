package board

import (
	"fmt"

	"github.com/cellforge/lifegrid/internal/rng"
)

// Alphabet is the ordered set of distinct colony markers currently in play.
type Alphabet []byte

// DefaultAlphabet is used when no alphabet is configured.
var DefaultAlphabet = Alphabet{'O', 'X', '@'}

// ParseAlphabet builds an alphabet from a string of marker characters.
// Blanks, bytes above 127, and duplicates are rejected.
func ParseAlphabet(s string) (Alphabet, error) {
	seen := map[byte]bool{}
	a := make(Alphabet, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == Dead:
			return nil, fmt.Errorf("%w: blank at position %d", ErrInvalidAlphabet, i)
		case c > 127:
			return nil, fmt.Errorf("%w: byte 0x%02x outside ASCII range", ErrInvalidAlphabet, c)
		case seen[c]:
			return nil, fmt.Errorf("%w: duplicate marker %q", ErrInvalidAlphabet, c)
		}
		seen[c] = true
		a = append(a, c)
	}
	return a, nil
}

// Pick draws one marker uniformly at random, falling back to FallbackMarker
// when the alphabet is empty.
func (a Alphabet) Pick(r *rng.Source) byte {
	if len(a) == 0 {
		return FallbackMarker
	}
	return a[r.IntN(len(a))]
}

// Contains reports whether c is a member.
func (a Alphabet) Contains(c byte) bool {
	for _, m := range a {
		if m == c {
			return true
		}
	}
	return false
}

func (a Alphabet) String() string { return string(a) }
