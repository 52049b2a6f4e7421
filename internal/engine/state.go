package engine

import (
	"fmt"

	"github.com/talgya/village-journey/internal/entropy"
	"github.com/talgya/village-journey/internal/events"
	"github.com/talgya/village-journey/internal/village"
	"github.com/talgya/village-journey/internal/world"
)

// State is a serialisable snapshot of a game. Archetypes are template data
// and are stored by type only.
type State struct {
	SessionID     string             `json:"session_id"`
	Seed          int64              `json:"seed"`
	Turn          int                `json:"turn"`
	MovedThisTurn bool               `json:"moved_this_turn"`
	TileSize      float64            `json:"tile_size"`
	Tiles         [][]world.TileType `json:"tiles"` // Indexed [x][y]
	Position      world.Coord        `json:"position"`
	Stats         village.Stats      `json:"stats"`
	Log           []LogEntry         `json:"log,omitempty"`
}

// Snapshot captures the current game state.
func (g *Game) Snapshot() State {
	return State{
		SessionID:     g.SessionID,
		Seed:          g.Seed,
		Turn:          g.turn,
		MovedThisTurn: g.movedThisTurn,
		TileSize:      g.World.TileSize,
		Tiles:         g.World.Types(),
		Position:      g.Village.Position(),
		Stats:         g.Village.Stats.Clone(),
		Log:           append([]LogEntry(nil), g.Log...),
	}
}

// Restore rebuilds a game from a snapshot. The random stream is reseeded
// from the session seed and turn so a resumed game stays deterministic.
func Restore(cfg Config, st State) (*Game, error) {
	grid, err := world.Rebuild(st.TileSize, st.Tiles, cfg.Archetypes)
	if err != nil {
		return nil, fmt.Errorf("restore world: %w", err)
	}
	if !grid.InBounds(st.Position) {
		return nil, fmt.Errorf("restore village at %s: %w", st.Position, ErrOutOfBounds)
	}
	table, err := events.NewTable(cfg.Events)
	if err != nil {
		return nil, err
	}

	rng, _ := entropy.NewRand(st.Seed + int64(st.Turn))
	return &Game{
		SessionID:     st.SessionID,
		Seed:          st.Seed,
		World:         grid,
		Village:       village.Restore(st.Stats, st.Position, rng),
		Events:        table,
		Log:           append([]LogEntry(nil), st.Log...),
		cfg:           cfg,
		turn:          st.Turn,
		movedThisTurn: st.MovedThisTurn,
		rng:           rng,
	}, nil
}
