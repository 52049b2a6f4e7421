// World generation. Uniform mode draws each tile's archetype independently;
// noise mode samples simplex noise so terrain clusters into regions.
package world

import (
	"errors"
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenMode selects how archetypes are assigned to cells.
type GenMode string

const (
	ModeUniform GenMode = "uniform" // Independent uniform pick per cell
	ModeNoise   GenMode = "noise"   // Simplex-noise banding into biomes
)

// ErrEmptyCatalog is returned when generation has no archetypes to choose from.
var ErrEmptyCatalog = errors.New("world: no tile archetypes available")

// GenConfig holds world generation parameters.
type GenConfig struct {
	Width    int     // Cells along X
	Height   int     // Cells along Y
	TileSize float64 // World units per cell
	Seed     int64   // Noise seed (ModeNoise only)
	Mode     GenMode
}

// DefaultGenConfig returns the classic 3×3 starting world.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:    3,
		Height:   3,
		TileSize: 1.0,
		Mode:     ModeUniform,
	}
}

// Generate creates a fully populated grid. rng drives uniform selection.
func Generate(cfg GenConfig, catalog []*Archetype, rng *rand.Rand) (*Grid, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("world: invalid size %dx%d", cfg.Width, cfg.Height)
	}
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	for i, a := range catalog {
		if a == nil {
			return nil, fmt.Errorf("world: archetype %d is nil", i)
		}
	}
	if cfg.TileSize <= 0 {
		cfg.TileSize = 1.0
	}

	pick := uniformPicker(catalog, rng)
	switch cfg.Mode {
	case "", ModeUniform:
	case ModeNoise:
		pick = noisePicker(catalog, cfg.Seed)
	default:
		return nil, fmt.Errorf("world: unknown generation mode %q", cfg.Mode)
	}

	g := newGrid(cfg.Width, cfg.Height, cfg.TileSize)
	for x := 0; x < cfg.Width; x++ {
		for y := 0; y < cfg.Height; y++ {
			c := Coord{X: x, Y: y}
			g.tiles[x][y] = &Tile{Archetype: pick(c), Coord: c}
		}
	}
	return g, nil
}

// Rebuild restores a grid from saved tile types, indexed [x][y].
func Rebuild(tileSize float64, types [][]TileType, catalog []*Archetype) (*Grid, error) {
	width := len(types)
	if width == 0 || len(types[0]) == 0 {
		return nil, errors.New("world: empty tile layout")
	}
	height := len(types[0])

	g := newGrid(width, height, tileSize)
	for x := 0; x < width; x++ {
		if len(types[x]) != height {
			return nil, fmt.Errorf("world: ragged tile layout at column %d", x)
		}
		for y := 0; y < height; y++ {
			a, ok := ArchetypeFor(catalog, types[x][y])
			if !ok {
				return nil, fmt.Errorf("world: no archetype for %s at (%d, %d)", types[x][y], x, y)
			}
			g.tiles[x][y] = &Tile{Archetype: a, Coord: Coord{X: x, Y: y}}
		}
	}
	return g, nil
}

func uniformPicker(catalog []*Archetype, rng *rand.Rand) func(Coord) *Archetype {
	return func(Coord) *Archetype {
		return catalog[rng.Intn(len(catalog))]
	}
}

// noisePicker buckets a normalized noise sample into len(catalog) equal bands.
func noisePicker(catalog []*Archetype, seed int64) func(Coord) *Archetype {
	noise := opensimplex.NewNormalized(seed)
	return func(c Coord) *Archetype {
		v := octaveNoise(noise, float64(c.X), float64(c.Y), 3, 0.15, 0.5)
		idx := int(v * float64(len(catalog)))
		if idx >= len(catalog) {
			idx = len(catalog) - 1
		}
		if idx < 0 {
			idx = 0
		}
		return catalog[idx]
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
