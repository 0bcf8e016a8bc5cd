package save

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNoSlot is returned when a slot ID is not in the index.
var ErrNoSlot = errors.New("no such save slot")

// savedAtLayout is fixed width so saved_at sorts as text.
const savedAtLayout = "2006-01-02T15:04:05.000000000Z"

// Slot is one row of the save index.
type Slot struct {
	ID      uuid.UUID
	Name    string
	Game    string
	Tick    int
	Path    string
	SavedAt time.Time
}

// Index is the sqlite table of save slots.
type Index struct {
	db *sql.DB
}

// OpenIndex opens or creates the index database at path.
func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty index path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS slots (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			game TEXT NOT NULL,
			tick INTEGER NOT NULL,
			path TEXT NOT NULL,
			saved_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS slots_game ON slots(game, saved_at);`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init index: %w", err)
		}
	}
	return &Index{db: db}, nil
}

// Close closes the database.
func (x *Index) Close() error { return x.db.Close() }

// Put inserts or replaces s.
func (x *Index) Put(ctx context.Context, s Slot) error {
	_, err := x.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO slots (id, name, game, tick, path, saved_at) VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID.String(), s.Name, s.Game, s.Tick, s.Path, s.SavedAt.UTC().Format(savedAtLayout))
	return err
}

// Get returns the slot with id.
func (x *Index) Get(ctx context.Context, id uuid.UUID) (Slot, error) {
	row := x.db.QueryRowContext(ctx,
		`SELECT id, name, game, tick, path, saved_at FROM slots WHERE id = ?`, id.String())
	s, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrNoSlot
	}
	return s, err
}

// List returns the slots saved for game, newest first.
func (x *Index) List(ctx context.Context, game string) ([]Slot, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT id, name, game, tick, path, saved_at FROM slots WHERE game = ? ORDER BY saved_at DESC, rowid DESC`, game)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the slot with id from the index.
func (x *Index) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := x.db.ExecContext(ctx, `DELETE FROM slots WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoSlot
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSlot(r scanner) (Slot, error) {
	var (
		s       Slot
		id      string
		savedAt string
	)
	if err := r.Scan(&id, &s.Name, &s.Game, &s.Tick, &s.Path, &savedAt); err != nil {
		return s, err
	}
	var err error
	if s.ID, err = uuid.Parse(id); err != nil {
		return s, fmt.Errorf("slot id %q: %w", id, err)
	}
	if s.SavedAt, err = time.Parse(savedAtLayout, savedAt); err != nil {
		return s, fmt.Errorf("slot %s saved_at: %w", id, err)
	}
	return s, nil
}
