// Package world provides the tile grid, terrain archetypes, and world generation.
// The grid is a fixed Width×Height rectangle addressed by integer (x, y).
package world

import (
	"fmt"
	"strings"
)

// Coord is a position on the grid. X grows to the right, Y grows upward.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the coordinate offset by d.
func (c Coord) Add(d Coord) Coord {
	return Coord{X: c.X + d.X, Y: c.Y + d.Y}
}

// String renders the coordinate as "(x, y)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Unit step directions.
var (
	Up    = Coord{X: 0, Y: 1}
	Down  = Coord{X: 0, Y: -1}
	Left  = Coord{X: -1, Y: 0}
	Right = Coord{X: 1, Y: 0}
)

// ParseDirection maps a direction name (up/down/left/right, or n/s/w/e) to a unit step.
func ParseDirection(name string) (Coord, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "up", "u", "north", "n":
		return Up, nil
	case "down", "d", "south", "s":
		return Down, nil
	case "left", "l", "west", "w":
		return Left, nil
	case "right", "r", "east", "e":
		return Right, nil
	default:
		return Coord{}, fmt.Errorf("unknown direction %q", name)
	}
}

// Vec2 is a continuous position in world units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
