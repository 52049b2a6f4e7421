package village

import (
	"github.com/talgya/village-journey/internal/world"
)

// Stats is the village's mutable state: resource counters and the roster.
// Population always mirrors len(Residents) once SyncPopulation has run.
type Stats struct {
	Population int        `json:"population"`
	Food       int        `json:"food"`
	Wood       int        `json:"wood"`
	Gold       int        `json:"gold"` // May go negative (debt)
	Residents  []Resident `json:"residents"`
}

// Apply adds delta to the given resource. Food and wood floor at zero;
// gold does not. Returns the new total.
func (s *Stats) Apply(kind world.ResourceKind, delta int) int {
	switch kind {
	case world.ResourceFood:
		s.Food = max(0, s.Food+delta)
		return s.Food
	case world.ResourceWood:
		s.Wood = max(0, s.Wood+delta)
		return s.Wood
	case world.ResourceGold:
		s.Gold += delta
		return s.Gold
	}
	return 0
}

// Amount returns the current total for a resource.
func (s *Stats) Amount(kind world.ResourceKind) int {
	switch kind {
	case world.ResourceFood:
		return s.Food
	case world.ResourceWood:
		return s.Wood
	case world.ResourceGold:
		return s.Gold
	}
	return 0
}

// SyncPopulation sets Population from the roster length.
func (s *Stats) SyncPopulation() {
	s.Population = len(s.Residents)
}

// HasResident reports whether a resident with this exact name exists.
func (s *Stats) HasResident(name string) bool {
	for _, r := range s.Residents {
		if r.Name == name {
			return true
		}
	}
	return false
}

// OccupationCounts tallies residents by occupation.
func (s *Stats) OccupationCounts() [NumOccupations]int {
	var counts [NumOccupations]int
	for _, r := range s.Residents {
		if int(r.Occupation) < NumOccupations {
			counts[r.Occupation]++
		}
	}
	return counts
}

// Clone returns a deep copy.
func (s Stats) Clone() Stats {
	s.Residents = append([]Resident(nil), s.Residents...)
	return s
}
