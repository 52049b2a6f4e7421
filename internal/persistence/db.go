// Package persistence provides SQL storage for game sessions.
// SQLite is the default; Postgres is available through pgx.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/village-journey/internal/engine"
	"github.com/talgya/village-journey/internal/village"
	"github.com/talgya/village-journey/internal/world"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ErrSessionNotFound is returned when a session ID has no saved state.
var ErrSessionNotFound = errors.New("persistence: session not found")

// DB wraps a SQL connection for session persistence.
type DB struct {
	conn    *sqlx.DB
	dialect Dialect
}

// Open opens or creates a database. For SQLite dsn is a file path; for
// Postgres it is a connection string.
func Open(dialect Dialect, dsn string) (*DB, error) {
	var driver string
	switch dialect {
	case DialectSQLite:
		driver = "sqlite"
		dsn = "file:" + dsn + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	case DialectPostgres:
		driver = "pgx"
		if dsn == "" {
			return nil, errors.New("open db: postgres requires a DSN")
		}
	default:
		return nil, fmt.Errorf("open db: unsupported dialect %q", dialect)
	}

	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dialect == DialectSQLite {
		conn.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	db := &DB{conn: conn, dialect: dialect}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate(ctx context.Context) error {
	logID := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.dialect == DialectPostgres {
		logID = "id BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			seed BIGINT NOT NULL,
			turn INTEGER NOT NULL,
			moved_this_turn BOOLEAN NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			tile_size DOUBLE PRECISION NOT NULL,
			pos_x INTEGER NOT NULL,
			pos_y INTEGER NOT NULL,
			population INTEGER NOT NULL,
			food INTEGER NOT NULL,
			wood INTEGER NOT NULL,
			gold INTEGER NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tiles (
			session_id TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			tile_type INTEGER NOT NULL,
			PRIMARY KEY (session_id, x, y)
		)`,
		`CREATE TABLE IF NOT EXISTS residents (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			name TEXT NOT NULL,
			occupation INTEGER NOT NULL,
			PRIMARY KEY (session_id, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS turn_log (
			` + logID + `,
			session_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			category TEXT NOT NULL,
			description TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turn_log_session ON turn_log(session_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

type sessionRow struct {
	ID            string  `db:"id"`
	Seed          int64   `db:"seed"`
	Turn          int     `db:"turn"`
	MovedThisTurn bool    `db:"moved_this_turn"`
	Width         int     `db:"width"`
	Height        int     `db:"height"`
	TileSize      float64 `db:"tile_size"`
	PosX          int     `db:"pos_x"`
	PosY          int     `db:"pos_y"`
	Population    int     `db:"population"`
	Food          int     `db:"food"`
	Wood          int     `db:"wood"`
	Gold          int     `db:"gold"`
	UpdatedAt     int64   `db:"updated_at"`
}

type tileRow struct {
	X        int   `db:"x"`
	Y        int   `db:"y"`
	TileType uint8 `db:"tile_type"`
}

type residentRow struct {
	Seq        int    `db:"seq"`
	Name       string `db:"name"`
	Occupation uint8  `db:"occupation"`
}

// SaveGame writes the full state of a session (replacing any previous save)
// together with its turn log.
func (db *DB) SaveGame(ctx context.Context, st engine.State) error {
	slog.Info("saving session", "session", st.SessionID, "turn", st.Turn)

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"sessions", "tiles", "residents", "turn_log"} {
		col := "session_id"
		if table == "sessions" {
			col = "id"
		}
		q := tx.Rebind(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, col))
		if _, err := tx.ExecContext(ctx, q, st.SessionID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	width, height := len(st.Tiles), 0
	if width > 0 {
		height = len(st.Tiles[0])
	}
	row := sessionRow{
		ID:            st.SessionID,
		Seed:          st.Seed,
		Turn:          st.Turn,
		MovedThisTurn: st.MovedThisTurn,
		Width:         width,
		Height:        height,
		TileSize:      st.TileSize,
		PosX:          st.Position.X,
		PosY:          st.Position.Y,
		Population:    st.Stats.Population,
		Food:          st.Stats.Food,
		Wood:          st.Stats.Wood,
		Gold:          st.Stats.Gold,
		UpdatedAt:     time.Now().UnixNano(),
	}
	if _, err := tx.NamedExecContext(ctx, `INSERT INTO sessions
		(id, seed, turn, moved_this_turn, width, height, tile_size, pos_x, pos_y,
		 population, food, wood, gold, updated_at)
		VALUES (:id, :seed, :turn, :moved_this_turn, :width, :height, :tile_size, :pos_x, :pos_y,
		 :population, :food, :wood, :gold, :updated_at)`, row); err != nil {
		return fmt.Errorf("insert session %s: %w", st.SessionID, err)
	}

	tileStmt, err := tx.PreparexContext(ctx, tx.Rebind(
		"INSERT INTO tiles (session_id, x, y, tile_type) VALUES (?, ?, ?, ?)"))
	if err != nil {
		return err
	}
	defer tileStmt.Close()
	for x, col := range st.Tiles {
		for y, tt := range col {
			if _, err := tileStmt.ExecContext(ctx, st.SessionID, x, y, uint8(tt)); err != nil {
				return fmt.Errorf("insert tile (%d, %d): %w", x, y, err)
			}
		}
	}

	resStmt, err := tx.PreparexContext(ctx, tx.Rebind(
		"INSERT INTO residents (session_id, seq, name, occupation) VALUES (?, ?, ?, ?)"))
	if err != nil {
		return err
	}
	defer resStmt.Close()
	for i, r := range st.Stats.Residents {
		if _, err := resStmt.ExecContext(ctx, st.SessionID, i, r.Name, uint8(r.Occupation)); err != nil {
			return fmt.Errorf("insert resident %q: %w", r.Name, err)
		}
	}

	if err := appendLog(ctx, tx, st.SessionID, st.Log); err != nil {
		return err
	}

	return tx.Commit()
}

func appendLog(ctx context.Context, tx *sqlx.Tx, sessionID string, entries []engine.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	stmt, err := tx.PreparexContext(ctx, tx.Rebind(
		"INSERT INTO turn_log (session_id, turn, category, description) VALUES (?, ?, ?, ?)"))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, sessionID, e.Turn, e.Category, e.Description); err != nil {
			return fmt.Errorf("insert log entry: %w", err)
		}
	}
	return nil
}

// LoadGame reads a saved session. The log holds the most recent
// engine.MaxLogEntries entries.
func (db *DB) LoadGame(ctx context.Context, sessionID string) (engine.State, error) {
	var row sessionRow
	err := db.conn.GetContext(ctx, &row, db.conn.Rebind("SELECT * FROM sessions WHERE id = ?"), sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.State{}, fmt.Errorf("load %s: %w", sessionID, ErrSessionNotFound)
	}
	if err != nil {
		return engine.State{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	st := engine.State{
		SessionID:     row.ID,
		Seed:          row.Seed,
		Turn:          row.Turn,
		MovedThisTurn: row.MovedThisTurn,
		TileSize:      row.TileSize,
	}
	st.Position.X, st.Position.Y = row.PosX, row.PosY
	st.Stats.Food, st.Stats.Wood, st.Stats.Gold = row.Food, row.Wood, row.Gold

	var tiles []tileRow
	if err := db.conn.SelectContext(ctx, &tiles,
		db.conn.Rebind("SELECT x, y, tile_type FROM tiles WHERE session_id = ?"), sessionID); err != nil {
		return engine.State{}, fmt.Errorf("load tiles: %w", err)
	}
	if len(tiles) != row.Width*row.Height {
		return engine.State{}, fmt.Errorf("load tiles: found %d rows for a %dx%d grid", len(tiles), row.Width, row.Height)
	}
	st.Tiles = make([][]world.TileType, row.Width)
	for x := range st.Tiles {
		st.Tiles[x] = make([]world.TileType, row.Height)
	}
	for _, t := range tiles {
		if t.X < 0 || t.X >= row.Width || t.Y < 0 || t.Y >= row.Height {
			return engine.State{}, fmt.Errorf("load tiles: (%d, %d) outside %dx%d", t.X, t.Y, row.Width, row.Height)
		}
		st.Tiles[t.X][t.Y] = world.TileType(t.TileType)
	}

	var residents []residentRow
	if err := db.conn.SelectContext(ctx, &residents,
		db.conn.Rebind("SELECT seq, name, occupation FROM residents WHERE session_id = ? ORDER BY seq"), sessionID); err != nil {
		return engine.State{}, fmt.Errorf("load residents: %w", err)
	}
	for _, r := range residents {
		st.Stats.Residents = append(st.Stats.Residents, village.Resident{
			Name:       r.Name,
			Occupation: village.Occupation(r.Occupation),
		})
	}
	st.Stats.SyncPopulation()

	st.Log, err = db.RecentLog(ctx, sessionID, engine.MaxLogEntries)
	if err != nil {
		return engine.State{}, err
	}
	return st, nil
}

// LatestSessionID returns the most recently saved session.
func (db *DB) LatestSessionID(ctx context.Context) (string, error) {
	var id string
	err := db.conn.GetContext(ctx, &id, "SELECT id FROM sessions ORDER BY updated_at DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSessionNotFound
	}
	return id, err
}

// RecentLog returns the newest limit log entries for a session, oldest first.
func (db *DB) RecentLog(ctx context.Context, sessionID string, limit int) ([]engine.LogEntry, error) {
	var entries []engine.LogEntry
	err := db.conn.SelectContext(ctx, &entries, db.conn.Rebind(
		`SELECT turn, category, description FROM turn_log
		 WHERE session_id = ? ORDER BY id DESC LIMIT ?`), sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent log: %w", err)
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
