// Package engine provides the turn controller. Control flows one way: the
// game advances the turn, then drives the village and queries the world.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/talgya/village-journey/internal/entropy"
	"github.com/talgya/village-journey/internal/events"
	"github.com/talgya/village-journey/internal/village"
	"github.com/talgya/village-journey/internal/world"
)

// Sentinel errors for rejected moves.
var (
	ErrAlreadyMoved = errors.New("engine: village already moved this turn")
	ErrOutOfBounds  = errors.New("engine: target is outside the world")
)

// MaxLogEntries bounds the in-memory turn log.
const MaxLogEntries = 500

// Config holds everything needed to start a session.
type Config struct {
	World       world.GenConfig
	Village     village.Config
	EventChance float64 // Probability of a random event each turn, 0–1
	Archetypes  []*world.Archetype
	Events      []events.Definition
}

// DefaultConfig returns the standard 3×3 session with an event every turn.
func DefaultConfig() Config {
	return Config{
		World:       world.DefaultGenConfig(),
		Village:     village.DefaultConfig(),
		EventChance: 1.0,
		Archetypes:  world.DefaultArchetypes(),
		Events:      events.DefaultDefinitions(),
	}
}

// Game is one play session: a world, its single village, and the turn counter.
type Game struct {
	SessionID string
	Seed      int64
	World     *world.Grid
	Village   *village.Village
	Events    *events.Table
	Log       []LogEntry

	cfg           Config
	turn          int
	movedThisTurn bool
	rng           *rand.Rand
}

// TurnReport summarises what happened during NextTurn.
type TurnReport struct {
	Turn       int                 `json:"turn"`
	Population village.TurnOutcome `json:"population"`
	Tile       world.TileType      `json:"tile"`
	Collected  []village.Collected `json:"collected"`
	Event      *events.Outcome     `json:"event,omitempty"`
	Stats      village.Stats       `json:"stats"`
}

// MoveReport summarises a successful move.
type MoveReport struct {
	From      world.Coord         `json:"from"`
	To        world.Coord         `json:"to"`
	Tile      world.TileType      `json:"tile"`
	Collected []village.Collected `json:"collected"`
}

// NewGame generates a world, founds the village on a random tile, and
// collects that tile's yield. seed 0 picks a random seed.
func NewGame(cfg Config, seed int64) (*Game, error) {
	rng, seed := entropy.NewRand(seed)

	genCfg := cfg.World
	if genCfg.Seed == 0 {
		genCfg.Seed = seed
	}
	grid, err := world.Generate(genCfg, cfg.Archetypes, rng)
	if err != nil {
		return nil, fmt.Errorf("generate world: %w", err)
	}
	table, err := events.NewTable(cfg.Events)
	if err != nil {
		return nil, err
	}

	slog.Info("world generated", "grid", grid.String(), "seed", seed)
	for t, c := range grid.TypeCounts() {
		slog.Debug("terrain", "type", t, "count", c)
	}

	g := &Game{
		SessionID: uuid.NewString(),
		Seed:      seed,
		World:     grid,
		Village:   village.New(cfg.Village, rng),
		Events:    table,
		cfg:       cfg,
		rng:       rng,
	}

	start := grid.RandomCoord(rng)
	if err := g.Village.Place(start); err != nil {
		return nil, err
	}
	if tile, ok := grid.Get(start); ok {
		g.Village.Collect(tile)
	}
	g.record(CategorySession, fmt.Sprintf("The village was founded at %s", start))

	slog.Info("game initialized", "session", g.SessionID, "turn", g.turn)
	return g, nil
}

// Turn returns the current turn number. It starts at 0 and only increases.
func (g *Game) Turn() int {
	return g.turn
}

// MovedThisTurn reports whether the one move of this turn has been used.
func (g *Game) MovedThisTurn() bool {
	return g.movedThisTurn
}

// CurrentTile returns the tile under the village.
func (g *Game) CurrentTile() *world.Tile {
	tile, _ := g.World.Get(g.Village.Position())
	return tile
}

// NextTurn advances the simulation by one turn.
func (g *Game) NextTurn() TurnReport {
	g.turn++
	g.movedThisTurn = false
	slog.Info("turn start", "turn", g.turn)

	report := TurnReport{Turn: g.turn}

	report.Population = g.Village.UpdatePerTurn()
	switch report.Population.Change {
	case village.PopulationIncreased:
		g.record(CategoryPopulation, fmt.Sprintf("%s (%s) joined the village",
			report.Population.Resident.Name, report.Population.Resident.Occupation))
	case village.PopulationDecreased:
		g.record(CategoryPopulation, fmt.Sprintf("%s (%s) left for lack of food",
			report.Population.Resident.Name, report.Population.Resident.Occupation))
	}

	if tile := g.CurrentTile(); tile != nil {
		report.Tile = tile.Type()
		report.Collected = g.Village.Collect(tile)
	} else {
		slog.Warn("village is off the map, skipping collection", "position", g.Village.Position().String())
	}

	if g.cfg.EventChance > 0 && g.rng.Float64() < g.cfg.EventChance {
		out := g.Events.Trigger(&g.Village.Stats, g.rng)
		report.Event = &out
		g.record(CategoryEvent, out.Message)
	}

	report.Stats = g.Village.Stats.Clone()
	slog.Info("turn end",
		"turn", g.turn,
		"population", report.Stats.Population,
		"food", report.Stats.Food,
		"wood", report.Stats.Wood,
		"gold", report.Stats.Gold,
	)
	return report
}

// Move shifts the village one step in dir. Only one move is allowed per
// turn; the new tile's yield is collected on arrival.
func (g *Game) Move(dir world.Coord) (MoveReport, error) {
	from := g.Village.Position()
	to := from.Add(dir)

	if g.movedThisTurn {
		return MoveReport{}, fmt.Errorf("move to %s: %w", to, ErrAlreadyMoved)
	}
	tile, ok := g.World.Get(to)
	if !ok {
		return MoveReport{}, fmt.Errorf("move to %s: %w", to, ErrOutOfBounds)
	}

	g.Village.Move(to)
	g.movedThisTurn = true

	report := MoveReport{
		From:      from,
		To:        to,
		Tile:      tile.Type(),
		Collected: g.Village.Collect(tile),
	}
	g.record(CategoryMove, fmt.Sprintf("The village moved from %s to %s (%s)", from, to, tile.Type()))
	return report, nil
}
