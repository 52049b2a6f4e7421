package world

// TileType tags the terrain category of a tile.
type TileType uint8

const (
	TilePlains    TileType = iota // Open fields, mostly food
	TileForest                    // Timber and some game
	TileMountains                 // Ore and trade goods, poor farmland
)

// ResourceKind enumerates the village's stockpiled resources.
type ResourceKind uint8

const (
	ResourceFood ResourceKind = iota
	ResourceWood
	ResourceGold
)

// Yield is the amount of one resource collected from a tile per visit.
// Amount may be negative.
type Yield struct {
	Kind   ResourceKind `json:"kind"`
	Amount int          `json:"amount"`
}

// Archetype is immutable template data describing a terrain category.
type Archetype struct {
	Type   TileType `json:"type"`
	Yields []Yield  `json:"yields"`
}

// DefaultArchetypes returns the standard terrain catalog.
func DefaultArchetypes() []*Archetype {
	return []*Archetype{
		{Type: TilePlains, Yields: []Yield{
			{Kind: ResourceFood, Amount: 8},
			{Kind: ResourceGold, Amount: 1},
		}},
		{Type: TileForest, Yields: []Yield{
			{Kind: ResourceWood, Amount: 6},
			{Kind: ResourceFood, Amount: 3},
		}},
		{Type: TileMountains, Yields: []Yield{
			{Kind: ResourceGold, Amount: 4},
			{Kind: ResourceWood, Amount: 1},
			{Kind: ResourceFood, Amount: -2}, // Thin soil, hard going
		}},
	}
}

// ArchetypeFor finds the archetype with the given type in a catalog.
func ArchetypeFor(catalog []*Archetype, t TileType) (*Archetype, bool) {
	for _, a := range catalog {
		if a != nil && a.Type == t {
			return a, true
		}
	}
	return nil, false
}

// TileTypeName returns a human-readable name for a tile type.
func TileTypeName(t TileType) string {
	switch t {
	case TilePlains:
		return "Plains"
	case TileForest:
		return "Forest"
	case TileMountains:
		return "Mountains"
	default:
		return "Unknown"
	}
}

// String implements fmt.Stringer.
func (t TileType) String() string {
	return TileTypeName(t)
}

// ResourceName returns a human-readable name for a resource kind.
func ResourceName(k ResourceKind) string {
	switch k {
	case ResourceFood:
		return "Food"
	case ResourceWood:
		return "Wood"
	case ResourceGold:
		return "Gold"
	default:
		return "Unknown"
	}
}

// String implements fmt.Stringer.
func (k ResourceKind) String() string {
	return ResourceName(k)
}

// Valid reports whether k is one of the known resource kinds.
func (k ResourceKind) Valid() bool {
	return k <= ResourceGold
}
