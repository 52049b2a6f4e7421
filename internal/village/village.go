package village

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/talgya/village-journey/internal/world"
)

// ErrAlreadyPlaced is returned when Place is called on a village that is
// already on the map. A session has exactly one village, placed once.
var ErrAlreadyPlaced = errors.New("village: already placed")

// Config holds the starting stockpile and roster shape.
type Config struct {
	InitialFood    int
	InitialWood    int
	InitialGold    int
	ExtraResidents int // Random-occupation residents added after one of each trade
}

// DefaultConfig returns the standard starting village.
func DefaultConfig() Config {
	return Config{
		InitialFood:    50,
		InitialWood:    20,
		InitialGold:    10,
		ExtraResidents: 2,
	}
}

// PopulationChange describes what the per-turn rules did to the roster.
type PopulationChange uint8

const (
	PopulationStable PopulationChange = iota
	PopulationIncreased
	PopulationDecreased
)

// String implements fmt.Stringer.
func (c PopulationChange) String() string {
	switch c {
	case PopulationIncreased:
		return "increased"
	case PopulationDecreased:
		return "decreased"
	default:
		return "stable"
	}
}

// TurnOutcome reports the effect of UpdatePerTurn.
type TurnOutcome struct {
	Change   PopulationChange `json:"change"`
	Resident *Resident        `json:"resident,omitempty"` // Joined or departed resident
	Eaten    int              `json:"eaten"`              // Food consumed (before clamping)
}

// Collected is one yield applied to the stockpile.
type Collected struct {
	Yield world.Yield `json:"yield"`
	Total int         `json:"total"` // Resource total after applying
}

// Village is the single settlement travelling across the grid.
type Village struct {
	Stats Stats

	pos    world.Coord
	placed bool
	rng    *rand.Rand
	namer  *Namer
}

// New creates a village with one resident of each occupation plus
// cfg.ExtraResidents residents of random occupation.
func New(cfg Config, rng *rand.Rand) *Village {
	v := &Village{
		Stats: Stats{
			Food: max(0, cfg.InitialFood),
			Wood: max(0, cfg.InitialWood),
			Gold: cfg.InitialGold,
		},
		rng:   rng,
		namer: NewNamer(rng),
	}
	for _, occ := range Occupations {
		v.addResident(occ)
	}
	for i := 0; i < cfg.ExtraResidents; i++ {
		v.addResident(v.randomOccupation())
	}
	v.Stats.SyncPopulation()

	slog.Info("village initialized",
		"population", v.Stats.Population,
		"food", v.Stats.Food,
		"wood", v.Stats.Wood,
		"gold", v.Stats.Gold,
	)
	for _, r := range v.Stats.Residents {
		slog.Debug("resident", "name", r.Name, "occupation", r.Occupation)
	}
	return v
}

// Restore rebuilds a village from saved state. Negative food or wood is
// floored at zero.
func Restore(stats Stats, pos world.Coord, rng *rand.Rand) *Village {
	v := &Village{
		Stats:  stats.Clone(),
		pos:    pos,
		placed: true,
		rng:    rng,
		namer:  NewNamer(rng),
	}
	v.Stats.Food = max(0, v.Stats.Food)
	v.Stats.Wood = max(0, v.Stats.Wood)
	v.Stats.SyncPopulation()
	return v
}

// Place puts the village on the map. It may only be called once.
func (v *Village) Place(c world.Coord) error {
	if v.placed {
		return fmt.Errorf("place at %s: %w", c, ErrAlreadyPlaced)
	}
	v.pos = c
	v.placed = true
	slog.Info("village placed", "position", c.String())
	return nil
}

// Move relocates the village. Bounds are the caller's responsibility.
func (v *Village) Move(c world.Coord) {
	slog.Info("village moved", "from", v.pos.String(), "to", c.String())
	v.pos = c
}

// Position returns the village's grid coordinate.
func (v *Village) Position() world.Coord {
	return v.pos
}

// Placed reports whether Place has been called.
func (v *Village) Placed() bool {
	return v.placed
}

// UpdatePerTurn applies the population and food rules:
//  1. food > residents (and residents > 0): one newcomer joins;
//  2. otherwise food == 0 with more than one resident: one resident leaves;
//  3. every resident eats one food, floored at zero.
func (v *Village) UpdatePerTurn() TurnOutcome {
	var out TurnOutcome
	count := len(v.Stats.Residents)

	if v.Stats.Food > count && count > 0 {
		r := v.addResident(v.randomOccupation())
		out.Change = PopulationIncreased
		out.Resident = &r
		slog.Info("a new resident has joined", "name", r.Name, "occupation", r.Occupation)
	} else if v.Stats.Food == 0 && count > 1 {
		idx := v.rng.Intn(count)
		r := v.Stats.Residents[idx]
		v.Stats.Residents = append(v.Stats.Residents[:idx], v.Stats.Residents[idx+1:]...)
		out.Change = PopulationDecreased
		out.Resident = &r
		slog.Warn("a resident has left for lack of food", "name", r.Name, "occupation", r.Occupation)
	}

	v.Stats.SyncPopulation()
	out.Eaten = v.Stats.Population
	v.Stats.Apply(world.ResourceFood, -v.Stats.Population)

	slog.Info("village stats updated",
		"population", out.Change.String(),
		"pop", v.Stats.Population,
		"food", v.Stats.Food,
		"wood", v.Stats.Wood,
		"gold", v.Stats.Gold,
	)
	return out
}

// Collect gathers every yield of the tile into the stockpile.
func (v *Village) Collect(tile *world.Tile) []Collected {
	if tile == nil || tile.Archetype == nil {
		slog.Warn("no tile data, cannot collect resources")
		return nil
	}

	out := make([]Collected, 0, len(tile.Archetype.Yields))
	for _, y := range tile.Archetype.Yields {
		total := v.Stats.Apply(y.Kind, y.Amount)
		out = append(out, Collected{Yield: y, Total: total})
		slog.Debug("collected",
			"amount", y.Amount,
			"resource", y.Kind,
			"tile", tile.Type(),
			"food", v.Stats.Food,
			"wood", v.Stats.Wood,
			"gold", v.Stats.Gold,
		)
	}
	return out
}

// OccupationSummary renders the roster make-up, e.g. "Residents: F:2 C:1 M:1 T:2".
func (v *Village) OccupationSummary() string {
	if len(v.Stats.Residents) == 0 {
		return "Residents: none"
	}
	counts := v.Stats.OccupationCounts()
	var b strings.Builder
	b.WriteString("Residents:")
	for _, occ := range Occupations {
		fmt.Fprintf(&b, " %s:%d", occ.Short(), counts[occ])
	}
	return b.String()
}

func (v *Village) addResident(occ Occupation) Resident {
	r := Resident{
		Name:       v.namer.Unique(v.Stats.HasResident),
		Occupation: occ,
	}
	v.Stats.Residents = append(v.Stats.Residents, r)
	return r
}

func (v *Village) randomOccupation() Occupation {
	return Occupations[v.rng.Intn(NumOccupations)]
}
