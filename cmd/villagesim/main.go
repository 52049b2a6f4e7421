// Command villagesim runs the village journey simulation from the terminal
// or as an HTTP API.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/talgya/village-journey/internal/api"
	"github.com/talgya/village-journey/internal/config"
	"github.com/talgya/village-journey/internal/engine"
	"github.com/talgya/village-journey/internal/persistence"
	"github.com/talgya/village-journey/internal/report"
	"github.com/talgya/village-journey/internal/world"
)

func main() {
	serve := flag.Bool("serve", false, "serve the HTTP API instead of the interactive prompt")
	auto := flag.Int("auto", -1, "play N turns automatically (0 = until interrupted)")
	resume := flag.Bool("resume", false, "resume the most recently saved session")
	noDB := flag.Bool("no-db", false, "run without persistence")
	envFile := flag.String("env", ".env", "optional dotenv file")
	seed := flag.Int64("seed", 0, "random seed (overrides VILLAGE_SEED)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if !*noDB {
		db, err = openDB(cfg)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	// ── Session ───────────────────────────────────────────────────────
	game, err := loadOrCreate(db, cfg, *resume)
	if err != nil {
		slog.Error("failed to start session", "error", err)
		os.Exit(1)
	}
	save := func() {
		if db == nil {
			return
		}
		if err := db.SaveGame(context.Background(), game.Snapshot()); err != nil {
			slog.Error("save failed", "error", err)
		}
	}
	save()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case *serve:
		runServer(ctx, game, db, cfg, *auto)
	case *auto >= 0:
		runner := &engine.Runner{
			Game:     game,
			Interval: cfg.AutoInterval,
			MaxTurns: *auto,
			OnTurn: func(r engine.TurnReport) {
				fmt.Println(report.Turn(r))
				fmt.Println()
			},
		}
		runner.Run(ctx)
		fmt.Println(report.Status(game))
	default:
		repl(ctx, game, save, os.Stdin, os.Stdout)
	}

	save()
	fmt.Fprintf(os.Stderr, "Session %s stopped at turn %d.\n", game.SessionID, game.Turn())
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func openDB(cfg config.Config) (*persistence.DB, error) {
	dialect := persistence.Dialect(cfg.DBDialect)
	dsn := cfg.DBDSN
	if dialect == persistence.DialectSQLite {
		dsn = cfg.DBPath
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	db, err := persistence.Open(dialect, dsn)
	if err != nil {
		return nil, err
	}
	slog.Info("database opened", "dialect", dialect)
	return db, nil
}

func loadOrCreate(db *persistence.DB, cfg config.Config, resume bool) (*engine.Game, error) {
	gameCfg := cfg.Game()
	if resume && db != nil {
		ctx := context.Background()
		id, err := db.LatestSessionID(ctx)
		switch {
		case errors.Is(err, persistence.ErrSessionNotFound):
			slog.Info("no saved session found, starting a new one")
		case err != nil:
			return nil, err
		default:
			st, err := db.LoadGame(ctx, id)
			if err != nil {
				return nil, err
			}
			g, err := engine.Restore(gameCfg, st)
			if err != nil {
				return nil, err
			}
			slog.Info("session restored", "session", g.SessionID, "turn", g.Turn())
			return g, nil
		}
	}
	return engine.NewGame(gameCfg, cfg.Seed)
}

func runServer(ctx context.Context, game *engine.Game, db *persistence.DB, cfg config.Config, auto int) {
	if cfg.AdminKey == "" {
		slog.Warn("VILLAGE_ADMIN_KEY not set; POST endpoints are disabled")
	}
	srv := &api.Server{
		Game:     game,
		DB:       db,
		Port:     cfg.APIPort,
		AdminKey: cfg.AdminKey,
	}
	srv.Start()
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)

	if auto >= 0 {
		runner := &engine.Runner{
			Game:     game,
			Interval: cfg.AutoInterval,
			MaxTurns: auto,
			Lock:     &srv.Mu,
		}
		runner.Run(ctx)
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
}

const helpText = `Commands:
  next | n                  advance one turn
  move <up|down|left|right> move the village one tile (once per turn)
  status | s                show village status
  map | m                   show the world map
  residents | r             list residents
  log                       show recent events
  save                      save the session
  quit | q                  save and exit`

// repl reads commands line by line until quit, EOF, or cancellation.
func repl(ctx context.Context, g *engine.Game, save func(), in io.Reader, out io.Writer) {
	fmt.Fprintln(out, report.Status(g))
	fmt.Fprintln(out, report.Map(g.World, g.Village.Position()))
	fmt.Fprintln(out, helpText)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := scanLines(ctx, in)

	for {
		fmt.Fprint(out, "> ")
		var line string
		select {
		case <-ctx.Done():
			return
		case l, ok := <-lines:
			if !ok {
				return
			}
			line = l
		}
		if !dispatch(g, save, strings.Fields(line), out) {
			return
		}
	}
}

// scanLines streams lines from in until EOF or until ctx is done. The
// channel is closed when the reader goroutine exits.
func scanLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// dispatch runs one command. It returns false when the session should end.
func dispatch(g *engine.Game, save func(), args []string, out io.Writer) bool {
	if len(args) == 0 {
		return true
	}
	switch strings.ToLower(args[0]) {
	case "next", "n":
		fmt.Fprintln(out, report.Turn(g.NextTurn()))
	case "move":
		if len(args) < 2 {
			fmt.Fprintln(out, "usage: move <up|down|left|right>")
			return true
		}
		dir, err := world.ParseDirection(args[1])
		if err != nil {
			fmt.Fprintln(out, err)
			return true
		}
		mv, err := g.Move(dir)
		if err != nil {
			slog.Warn("move rejected", "error", err)
			switch {
			case errors.Is(err, engine.ErrAlreadyMoved):
				fmt.Fprintln(out, "The village has already moved this turn.")
			case errors.Is(err, engine.ErrOutOfBounds):
				fmt.Fprintln(out, "You cannot travel beyond the edge of the world.")
			default:
				fmt.Fprintln(out, err)
			}
			return true
		}
		fmt.Fprintf(out, "Moved to %s (%s). Gathered: %s\n", mv.To, mv.Tile, report.Yields(mv.Collected))
	case "status", "s":
		fmt.Fprintln(out, report.Status(g))
	case "map", "m":
		fmt.Fprintln(out, report.Map(g.World, g.Village.Position()))
	case "residents", "r":
		fmt.Fprintln(out, report.Residents(g.Village.Stats))
	case "log":
		for _, e := range g.Recent(10) {
			fmt.Fprintf(out, "[turn %d] %s: %s\n", e.Turn, e.Category, e.Description)
		}
	case "save":
		save()
		fmt.Fprintln(out, "Saved.")
	case "quit", "q", "exit":
		return false
	case "help", "h", "?":
		fmt.Fprintln(out, helpText)
	default:
		fmt.Fprintf(out, "unknown command %q (try help)\n", args[0])
	}
	return true
}
