package village

import (
	"math/rand"
	"strconv"
)

var firstNames = []string{
	"Alden", "Brynn", "Cedric", "Daria", "Errol", "Fiona", "Garrett", "Helena",
}

var lastNames = []string{
	"Stone", "River", "Moon", "Iron", "Swift", "Bright", "Shadow", "Flame",
}

// Regnal suffixes appended when a drawn name is already taken.
var suffixes = []string{"II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}

// Namer composes two-part resident names.
type Namer struct {
	rng   *rand.Rand
	first []string
	last  []string
}

// NewNamer creates a namer over the built-in name lists.
func NewNamer(rng *rand.Rand) *Namer {
	return &Namer{rng: rng, first: firstNames, last: lastNames}
}

// Draw returns a random "First Last" name.
func (n *Namer) Draw() string {
	return n.first[n.rng.Intn(len(n.first))] + " " + n.last[n.rng.Intn(len(n.last))]
}

// Unique draws a name and, if taken, retries with an increasing suffix
// ("Alden Stone II", "Alden Stone III", ...) until it is free.
func (n *Namer) Unique(taken func(string) bool) string {
	base := n.Draw()
	if !taken(base) {
		return base
	}
	for _, sfx := range suffixes {
		if name := base + " " + sfx; !taken(name) {
			return name
		}
	}
	// Past the regnal list, fall back to plain ordinals.
	for i := len(suffixes) + 2; ; i++ {
		name := base + " " + strconv.Itoa(i)
		if !taken(name) {
			return name
		}
	}
}
