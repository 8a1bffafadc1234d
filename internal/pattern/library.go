package pattern

// Built-in templates, stored once at rotation 0.
const (
	blockTemplate = `
OO
OO
`
	blinkerTemplate = `
OOO
`
	toadTemplate = `
 OOO
OOO
`
	beaconTemplate = `
OO
OO
  OO
  OO
`
	gliderTemplate = `
 O
  O
OOO
`
	lwssTemplate = `
 OOOO
O   O
    O
O  O
`
	rPentominoTemplate = `
 OO
OO
 O
`
	pulsarTemplate = `
  OOO   OOO

O    O O    O
O    O O    O
O    O O    O
  OOO   OOO

  OOO   OOO
O    O O    O
O    O O    O
O    O O    O

  OOO   OOO
`
)

var library = []Pattern{
	New("block", blockTemplate),
	New("blinker", blinkerTemplate),
	New("toad", toadTemplate),
	New("beacon", beaconTemplate),
	New("glider", gliderTemplate),
	New("lwss", lwssTemplate),
	New("r-pentomino", rPentominoTemplate),
	New("pulsar", pulsarTemplate),
}

// Library returns the built-in patterns in display order.
func Library() []Pattern {
	out := make([]Pattern, len(library))
	copy(out, library)
	return out
}

// Lookup finds a built-in pattern by name.
func Lookup(name string) (Pattern, bool) {
	for _, p := range library {
		if p.Name == name {
			return p, true
		}
	}
	return Pattern{}, false
}

// Names lists the built-in pattern names in display order.
func Names() []string {
	names := make([]string, len(library))
	for i, p := range library {
		names[i] = p.Name
	}
	return names
}
