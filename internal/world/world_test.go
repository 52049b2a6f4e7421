package world

import (
	"errors"
	"math/rand"
	"testing"
)

func TestGenerateFillsEveryCell(t *testing.T) {
	cfg := GenConfig{Width: 4, Height: 3, TileSize: 2}
	g, err := Generate(cfg, DefaultArchetypes(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if got := len(g.Tiles()); got != 12 {
		t.Fatalf("tile count = %d, want 12", got)
	}
	for x := 0; x < cfg.Width; x++ {
		for y := 0; y < cfg.Height; y++ {
			c := Coord{X: x, Y: y}
			tile, ok := g.Get(c)
			if !ok || tile == nil {
				t.Fatalf("missing tile at %s", c)
			}
			if tile.Coord != c {
				t.Fatalf("tile at %s reports coord %s", c, tile.Coord)
			}
			if tile.Archetype == nil {
				t.Fatalf("tile at %s has no archetype", c)
			}
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	if _, err := Generate(GenConfig{Width: 3, Height: 3}, nil, rng); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
	if _, err := Generate(GenConfig{Width: 0, Height: 3}, DefaultArchetypes(), rng); err == nil {
		t.Fatal("expected size error")
	}
	if _, err := Generate(GenConfig{Width: 3, Height: 3, Mode: "fractal"}, DefaultArchetypes(), rng); err == nil {
		t.Fatal("expected unknown mode error")
	}
}

func TestGenerateUniformUsesWholeCatalog(t *testing.T) {
	cfg := GenConfig{Width: 30, Height: 30, TileSize: 1}
	g, err := Generate(cfg, DefaultArchetypes(), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	counts := g.TypeCounts()
	for _, tt := range []TileType{TilePlains, TileForest, TileMountains} {
		if counts[tt] == 0 {
			t.Fatalf("no %s tiles in a 30x30 uniform world", tt)
		}
	}
}

func TestGenerateNoiseIsDeterministic(t *testing.T) {
	cfg := GenConfig{Width: 8, Height: 8, TileSize: 1, Seed: 99, Mode: ModeNoise}
	a, err := Generate(cfg, DefaultArchetypes(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("generate a: %v", err)
	}
	b, err := Generate(cfg, DefaultArchetypes(), rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("generate b: %v", err)
	}
	ta, tb := a.Types(), b.Types()
	for x := range ta {
		for y := range ta[x] {
			if ta[x][y] != tb[x][y] {
				t.Fatalf("noise world differs at (%d, %d): %s vs %s", x, y, ta[x][y], tb[x][y])
			}
		}
	}
}

func TestBoundsAndPosition(t *testing.T) {
	g, err := Generate(GenConfig{Width: 3, Height: 2, TileSize: 1.5}, DefaultArchetypes(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tests := []struct {
		c    Coord
		want bool
	}{
		{Coord{0, 0}, true},
		{Coord{2, 1}, true},
		{Coord{3, 0}, false},
		{Coord{0, 2}, false},
		{Coord{-1, 0}, false},
		{Coord{0, -1}, false},
	}
	for _, tc := range tests {
		if got := g.InBounds(tc.c); got != tc.want {
			t.Fatalf("InBounds(%s) = %v, want %v", tc.c, got, tc.want)
		}
		if _, ok := g.Get(tc.c); ok != tc.want {
			t.Fatalf("Get(%s) ok = %v, want %v", tc.c, ok, tc.want)
		}
	}

	if got := g.Position(Coord{X: 2, Y: 1}); got != (Vec2{X: 3, Y: 1.5}) {
		t.Fatalf("Position = %+v", got)
	}

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		if c := g.RandomCoord(rng); !g.InBounds(c) {
			t.Fatalf("RandomCoord out of bounds: %s", c)
		}
	}
}

func TestRebuildRoundTrip(t *testing.T) {
	g, err := Generate(GenConfig{Width: 5, Height: 4, TileSize: 1}, DefaultArchetypes(), rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	r, err := Rebuild(g.TileSize, g.Types(), DefaultArchetypes())
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if r.Width != 5 || r.Height != 4 {
		t.Fatalf("rebuilt size %dx%d", r.Width, r.Height)
	}
	for _, tile := range g.Tiles() {
		rt, _ := r.Get(tile.Coord)
		if rt.Type() != tile.Type() {
			t.Fatalf("type mismatch at %s", tile.Coord)
		}
	}

	if _, err := Rebuild(1, [][]TileType{{TilePlains}, {}}, DefaultArchetypes()); err == nil {
		t.Fatal("expected ragged layout error")
	}
	if _, err := Rebuild(1, [][]TileType{{TileType(9)}}, DefaultArchetypes()); err == nil {
		t.Fatal("expected unknown archetype error")
	}
}

func TestParseDirection(t *testing.T) {
	tests := map[string]Coord{"up": Up, "S": Down, " left ": Left, "e": Right}
	for in, want := range tests {
		got, err := ParseDirection(in)
		if err != nil || got != want {
			t.Fatalf("ParseDirection(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Fatal("expected error for unknown direction")
	}
}

func TestTileName(t *testing.T) {
	a, _ := ArchetypeFor(DefaultArchetypes(), TileForest)
	tile := &Tile{Archetype: a, Coord: Coord{X: 2, Y: 1}}
	if got := tile.Name(); got != "Tile_2_1_Forest" {
		t.Fatalf("Name = %q", got)
	}
}
