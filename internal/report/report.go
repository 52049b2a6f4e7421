// Package report renders game state as terminal text.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/talgya/village-journey/internal/engine"
	"github.com/talgya/village-journey/internal/village"
	"github.com/talgya/village-journey/internal/world"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	villageStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	debtStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Status renders the status panel: turn, position, and stockpiles.
func Status(g *engine.Game) string {
	s := g.Village.Stats
	gold := humanize.Comma(int64(s.Gold))
	if s.Gold < 0 {
		gold = debtStyle.Render(gold)
	}

	tile := "?"
	if t := g.CurrentTile(); t != nil {
		tile = t.Type().String()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Stat", "Value").
		Row("Turn", humanize.Comma(int64(g.Turn()))).
		Row("Position", fmt.Sprintf("%s %s", g.Village.Position(), tile)).
		Row("Population", humanize.Comma(int64(s.Population))).
		Row("Food", humanize.Comma(int64(s.Food))).
		Row("Wood", humanize.Comma(int64(s.Wood))).
		Row("Gold", gold)

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Village status"),
		t.Render(),
		dimStyle.Render(g.Village.OccupationSummary()),
	)
}

// Residents renders the roster as a numbered table.
func Residents(stats village.Stats) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Name", "Occupation")
	for i, r := range stats.Residents {
		t.Row(humanize.Ordinal(i+1), r.Name, r.Occupation.String())
	}
	return t.Render()
}

// Map draws the grid top row first. Tiles show their type initial; the
// village cell is marked with '@'.
func Map(grid *world.Grid, pos world.Coord) string {
	var b strings.Builder
	for y := grid.Height - 1; y >= 0; y-- {
		for x := 0; x < grid.Width; x++ {
			c := world.Coord{X: x, Y: y}
			if x > 0 {
				b.WriteByte(' ')
			}
			if c == pos {
				b.WriteString(villageStyle.Render("@"))
				continue
			}
			tile, _ := grid.Get(c)
			b.WriteString(tileGlyph(tile.Type()))
		}
		b.WriteByte('\n')
	}
	b.WriteString(dimStyle.Render("P=Plains F=Forest M=Mountains @=Village"))
	return b.String()
}

// Turn renders a one-turn summary.
func Turn(r engine.TurnReport) string {
	var lines []string
	lines = append(lines, titleStyle.Render(fmt.Sprintf("Turn %s", humanize.Comma(int64(r.Turn)))))

	switch r.Population.Change {
	case village.PopulationIncreased:
		lines = append(lines, fmt.Sprintf("%s (%s) joined the village.", r.Population.Resident.Name, r.Population.Resident.Occupation))
	case village.PopulationDecreased:
		lines = append(lines, fmt.Sprintf("%s (%s) left for lack of food.", r.Population.Resident.Name, r.Population.Resident.Occupation))
	default:
		lines = append(lines, "Population stable.")
	}
	lines = append(lines, fmt.Sprintf("The village ate %d food.", r.Population.Eaten))

	if len(r.Collected) > 0 {
		lines = append(lines, fmt.Sprintf("Gathered from %s: %s", r.Tile, Yields(r.Collected)))
	}
	if r.Event != nil {
		lines = append(lines, r.Event.Message)
	}
	return strings.Join(lines, "\n")
}

// Yields renders collected yields as "+8 Food, +1 Gold".
func Yields(cs []village.Collected) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, fmt.Sprintf("%+d %s", c.Yield.Amount, c.Yield.Kind))
	}
	return strings.Join(parts, ", ")
}

func tileGlyph(t world.TileType) string {
	switch t {
	case world.TilePlains:
		return "P"
	case world.TileForest:
		return "F"
	case world.TileMountains:
		return "M"
	default:
		return "?"
	}
}
