// Package events provides the random narrative event table. Each trigger
// picks one definition and nudges one resource by a bounded random amount.
package events

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/talgya/village-journey/internal/world"
)

// DefaultTemplate is used when a definition has no message template.
const DefaultTemplate = "{resource} {change} by {amount}"

// NothingHappened is the outcome message when the table is empty.
const NothingHappened = "Nothing in particular happened..."

// MaxMagnitude bounds |Min| and |Max| so the delta range always fits an int.
const MaxMagnitude = 1 << 20

// Definition is immutable event template data.
type Definition struct {
	Name     string             `json:"name"`
	Template string             `json:"template"` // Placeholders: {resource} {amount} {change}
	Target   world.ResourceKind `json:"target"`
	Min      int                `json:"min"` // Inclusive; negative means loss
	Max      int                `json:"max"` // Inclusive
}

// Validate checks the bounds and target.
func (d Definition) Validate() error {
	if d.Min > d.Max {
		return fmt.Errorf("event %q: min %d exceeds max %d", d.Name, d.Min, d.Max)
	}
	if d.Min < -MaxMagnitude || d.Max > MaxMagnitude {
		return fmt.Errorf("event %q: bounds [%d, %d] exceed ±%d", d.Name, d.Min, d.Max, MaxMagnitude)
	}
	if !d.Target.Valid() {
		return fmt.Errorf("event %q: unknown target resource %d", d.Name, d.Target)
	}
	return nil
}

// Format renders the message for an applied delta. {amount} is the
// absolute value; {change} reads "increased" or "decreased".
func (d Definition) Format(delta int) string {
	tmpl := d.Template
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	change := "increased"
	amount := delta
	if delta < 0 {
		change = "decreased"
		amount = -delta
	}
	r := strings.NewReplacer(
		"{resource}", world.ResourceName(d.Target),
		"{amount}", strconv.Itoa(amount),
		"{change}", change,
	)
	return r.Replace(tmpl)
}

// DefaultDefinitions returns the standard event deck.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: "bountiful_harvest", Template: "A bountiful harvest! {resource} {change} by {amount}.", Target: world.ResourceFood, Min: 5, Max: 15},
		{Name: "granary_rats", Template: "Rats got into the granary. {resource} {change} by {amount}.", Target: world.ResourceFood, Min: -10, Max: -3},
		{Name: "windfall_timber", Template: "A storm felled trees near camp. {resource} {change} by {amount}.", Target: world.ResourceWood, Min: 3, Max: 8},
		{Name: "wildfire", Template: "A wildfire swept the woodpile. {resource} {change} by {amount}.", Target: world.ResourceWood, Min: -8, Max: -2},
		{Name: "travelling_merchant", Template: "A travelling merchant paid well. {resource} {change} by {amount}.", Target: world.ResourceGold, Min: 2, Max: 10},
		{Name: "bandit_toll", Template: "Bandits demanded a toll. {resource} {change} by {amount}.", Target: world.ResourceGold, Min: -8, Max: -1},
	}
}
