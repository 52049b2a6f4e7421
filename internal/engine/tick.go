package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner plays turns automatically on a fixed interval.
type Runner struct {
	Game     *Game
	Interval time.Duration // Delay between turns; 0 runs back to back
	MaxTurns int           // Stop after this many turns; 0 = until cancelled
	Lock     sync.Locker   // Held around each turn when the game is shared

	// OnTurn is called after each turn, still under Lock.
	OnTurn func(TurnReport)
}

// Run plays turns until MaxTurns is reached or ctx is cancelled.
// It returns the number of turns played.
func (r *Runner) Run(ctx context.Context) int {
	slog.Info("autoplay started", "turn", r.Game.Turn(), "interval", r.Interval, "max_turns", r.MaxTurns)

	played := 0
	for r.MaxTurns == 0 || played < r.MaxTurns {
		if err := ctx.Err(); err != nil {
			break
		}

		r.step()
		played++

		if r.Interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(r.Interval):
			}
		}
	}

	slog.Info("autoplay stopped", "turn", r.Game.Turn(), "played", played)
	return played
}

func (r *Runner) step() {
	if r.Lock != nil {
		r.Lock.Lock()
		defer r.Lock.Unlock()
	}
	report := r.Game.NextTurn()
	if r.OnTurn != nil {
		r.OnTurn(report)
	}
}
