// Package village holds the village's stockpiles, its resident roster, and
// the per-turn population rules.
package village

// Occupation is a resident's trade. It only affects display.
type Occupation uint8

const (
	OccupationFarmer Occupation = iota
	OccupationCraftsman
	OccupationMercenary
	OccupationMerchant
)

// NumOccupations is the number of occupation values.
const NumOccupations = 4

// Occupations lists every occupation in declaration order.
var Occupations = [NumOccupations]Occupation{
	OccupationFarmer,
	OccupationCraftsman,
	OccupationMercenary,
	OccupationMerchant,
}

// String implements fmt.Stringer.
func (o Occupation) String() string {
	switch o {
	case OccupationFarmer:
		return "Farmer"
	case OccupationCraftsman:
		return "Craftsman"
	case OccupationMercenary:
		return "Mercenary"
	case OccupationMerchant:
		return "Merchant"
	default:
		return "Unknown"
	}
}

// Short is the one-letter code used in roster summaries.
func (o Occupation) Short() string {
	switch o {
	case OccupationFarmer:
		return "F"
	case OccupationCraftsman:
		return "C"
	case OccupationMercenary:
		return "M"
	case OccupationMerchant:
		return "T" // Trader, since M is taken
	default:
		return "?"
	}
}

// Resident is one named member of the village.
type Resident struct {
	Name       string     `json:"name"`
	Occupation Occupation `json:"occupation"`
}
