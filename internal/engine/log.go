package engine

// Log categories.
const (
	CategorySession    = "session"
	CategoryPopulation = "population"
	CategoryEvent      = "event"
	CategoryMove       = "move"
)

// LogEntry is a notable occurrence during play.
type LogEntry struct {
	Turn        int    `json:"turn" db:"turn"`
	Category    string `json:"category" db:"category"`
	Description string `json:"description" db:"description"`
}

func (g *Game) record(category, desc string) {
	g.Log = append(g.Log, LogEntry{Turn: g.turn, Category: category, Description: desc})
	if len(g.Log) > MaxLogEntries {
		g.Log = g.Log[len(g.Log)-MaxLogEntries:]
	}
}

// Recent returns up to limit of the newest log entries, oldest first.
func (g *Game) Recent(limit int) []LogEntry {
	start := 0
	if limit > 0 && len(g.Log) > limit {
		start = len(g.Log) - limit
	}
	return append([]LogEntry(nil), g.Log[start:]...)
}
