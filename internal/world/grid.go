package world

import (
	"fmt"
	"math/rand"
)

// Tile is one grid cell: a coordinate bound to its terrain archetype.
// Tiles are created once at generation and live for the whole session.
type Tile struct {
	Archetype *Archetype `json:"-"`
	Coord     Coord      `json:"coord"`
}

// Type returns the tile's terrain type.
func (t *Tile) Type() TileType {
	return t.Archetype.Type
}

// Name identifies the tile in logs, e.g. "Tile_2_1_Forest".
func (t *Tile) Name() string {
	return fmt.Sprintf("Tile_%d_%d_%s", t.Coord.X, t.Coord.Y, t.Archetype.Type)
}

// Grid holds the complete world: a dense Width×Height array of tiles.
type Grid struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	TileSize float64 `json:"tile_size"`

	tiles [][]*Tile // Indexed [x][y]
}

func newGrid(width, height int, tileSize float64) *Grid {
	tiles := make([][]*Tile, width)
	for x := range tiles {
		tiles[x] = make([]*Tile, height)
	}
	return &Grid{
		Width:    width,
		Height:   height,
		TileSize: tileSize,
		tiles:    tiles,
	}
}

// InBounds reports whether the coordinate lies inside the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// Get returns the tile at c, or false if c is out of bounds.
func (g *Grid) Get(c Coord) (*Tile, bool) {
	if !g.InBounds(c) {
		return nil, false
	}
	return g.tiles[c.X][c.Y], true
}

// Position converts a grid coordinate to a world-space position.
func (g *Grid) Position(c Coord) Vec2 {
	return Vec2{X: float64(c.X) * g.TileSize, Y: float64(c.Y) * g.TileSize}
}

// RandomCoord picks a uniformly random in-bounds coordinate.
func (g *Grid) RandomCoord(rng *rand.Rand) Coord {
	return Coord{X: rng.Intn(g.Width), Y: rng.Intn(g.Height)}
}

// Tiles returns every tile in column-major order (x outer, y inner).
func (g *Grid) Tiles() []*Tile {
	out := make([]*Tile, 0, g.Width*g.Height)
	for x := 0; x < g.Width; x++ {
		out = append(out, g.tiles[x]...)
	}
	return out
}

// Types returns the tile type of each cell, indexed [x][y].
func (g *Grid) Types() [][]TileType {
	out := make([][]TileType, g.Width)
	for x := range out {
		out[x] = make([]TileType, g.Height)
		for y := range out[x] {
			out[x][y] = g.tiles[x][y].Type()
		}
	}
	return out
}

// TypeCounts returns a summary of terrain distribution.
func (g *Grid) TypeCounts() map[TileType]int {
	counts := make(map[TileType]int)
	for _, t := range g.Tiles() {
		counts[t.Type()]++
	}
	return counts
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, tile=%.2f)", g.Width, g.Height, g.TileSize)
}
