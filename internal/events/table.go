package events

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/village-journey/internal/village"
	"github.com/talgya/village-journey/internal/world"
)

// Outcome is the result of one trigger.
type Outcome struct {
	Name    string             `json:"name,omitempty"`
	Message string             `json:"message"`
	Target  world.ResourceKind `json:"target"`
	Delta   int                `json:"delta"`
	Total   int                `json:"total"` // Target total after applying
	Applied bool               `json:"applied"`
}

// Table is a deck of event definitions drawn uniformly at random.
type Table struct {
	defs []Definition
}

// NewTable validates and copies the definitions.
func NewTable(defs []Definition) (*Table, error) {
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("new event table: %w", err)
		}
	}
	return &Table{defs: append([]Definition(nil), defs...)}, nil
}

// Len returns the number of definitions.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.defs)
}

// Definitions returns a copy of the deck.
func (t *Table) Definitions() []Definition {
	if t == nil {
		return nil
	}
	return append([]Definition(nil), t.defs...)
}

// Trigger draws one event and applies its delta to stats.
// An empty table changes nothing.
func (t *Table) Trigger(stats *village.Stats, rng *rand.Rand) Outcome {
	if t.Len() == 0 || stats == nil {
		return Outcome{Message: NothingHappened}
	}

	def := t.defs[rng.Intn(len(t.defs))]
	delta := def.Min + rng.Intn(def.Max-def.Min+1)
	total := stats.Apply(def.Target, delta)

	out := Outcome{
		Name:    def.Name,
		Message: def.Format(delta),
		Target:  def.Target,
		Delta:   delta,
		Total:   total,
		Applied: true,
	}
	slog.Info("event triggered",
		"event", def.Name,
		"message", out.Message,
		"food", stats.Food,
		"wood", stats.Wood,
		"gold", stats.Gold,
	)
	return out
}
