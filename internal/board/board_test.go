package board

import (
	"errors"
	"testing"

	"github.com/cellforge/lifegrid/internal/rng"
)

func TestRoundTrip(t *testing.T) {
	texts := []string{
		"   \n O \n   ",
		"OO\nOO",
		"X",
		"  X  \n Y Y \nZ   Z",
	}
	for _, text := range texts {
		b := Decode(text)
		if got := Encode(b); got != text {
			t.Errorf("round trip changed %q -> %q", text, got)
		}
		if !Decode(Encode(b)).Equal(b) {
			t.Errorf("decode(encode(b)) != b for %q", text)
		}
	}
}

func TestDecodeRagged(t *testing.T) {
	b := Decode("OOO\nO\nOO")
	if b.Width() != 3 {
		t.Errorf("declared width = %d, want 3", b.Width())
	}
	if b.Height() != 3 {
		t.Errorf("height = %d, want 3", b.Height())
	}
	// Cells past a short row read as dead.
	if b.At(2, 1) != Dead {
		t.Errorf("At(2,1) = %q, want dead", b.At(2, 1))
	}
	if b.At(0, 1) != 'O' {
		t.Errorf("At(0,1) = %q, want O", b.At(0, 1))
	}
}

func TestAtOutOfRange(t *testing.T) {
	b := Decode("OO\nOO")
	for _, pos := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}, {-5, -5}, {100, 100}} {
		if b.At(pos[0], pos[1]) != Dead {
			t.Errorf("At(%d,%d) should be dead", pos[0], pos[1])
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Decode("OO\nOO").Validate(); err != nil {
		t.Errorf("rectangular board rejected: %v", err)
	}

	if err := Decode("OOO\nO").Validate(); !errors.Is(err, ErrInvalidBoard) {
		t.Errorf("ragged board: got %v, want ErrInvalidBoard", err)
	}

	bad := Board{rows: [][]byte{{'O', 0x80}, {'O', 'O'}}}
	err := bad.Validate()
	if !errors.Is(err, ErrInvalidBoard) {
		t.Fatalf("non-ASCII board: got %v, want ErrInvalidBoard", err)
	}
	var ibe *InvalidBoardError
	if !errors.As(err, &ibe) || ibe.Row != 0 {
		t.Errorf("expected row 0 in error, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	b := Decode("OO\nOO")
	c := b.Clone()
	c.Set(0, 0, 'X')
	if b.At(0, 0) != 'O' {
		t.Error("mutating a clone leaked into the original")
	}
}

func TestPopulation(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"   \n   ", 0},
		{"O", 1},
		{"XO\nOX", 4},
		{"X \n Y", 2},
	}
	for _, tt := range tests {
		if got := Decode(tt.text).Population(); got != tt.want {
			t.Errorf("Population(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestParseAlphabet(t *testing.T) {
	a, err := ParseAlphabet("OX@")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(a) != 3 || !a.Contains('X') {
		t.Errorf("unexpected alphabet %q", a)
	}

	for _, bad := range []string{"O O", "OO", "O\x80"} {
		if _, err := ParseAlphabet(bad); !errors.Is(err, ErrInvalidAlphabet) {
			t.Errorf("ParseAlphabet(%q): got %v, want ErrInvalidAlphabet", bad, err)
		}
	}
}

func TestAlphabetPick(t *testing.T) {
	r := rng.New(1)
	if got := Alphabet(nil).Pick(r); got != FallbackMarker {
		t.Errorf("empty alphabet pick = %q, want fallback", got)
	}

	a := Alphabet{'A', 'B'}
	seen := map[byte]int{}
	for i := 0; i < 1000; i++ {
		seen[a.Pick(r)]++
	}
	if seen['A'] == 0 || seen['B'] == 0 {
		t.Errorf("pick never chose one of the markers: %v", seen)
	}
	if len(seen) != 2 {
		t.Errorf("pick produced marker outside alphabet: %v", seen)
	}
}
