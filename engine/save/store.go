package save

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/nathoo/runecore/engine"
)

// Store keeps save files in a directory and indexes them in saves.db
// there.
type Store struct {
	Dir   string
	Index *Index
}

// OpenStore opens the store rooted at dir.
func OpenStore(dir string) (*Store, error) {
	x, err := OpenIndex(filepath.Join(dir, "saves.db"))
	if err != nil {
		return nil, err
	}
	return &Store{Dir: dir, Index: x}, nil
}

// Close closes the index.
func (s *Store) Close() error { return s.Index.Close() }

// Save writes e to a new slot called name.
func (s *Store) Save(ctx context.Context, name string, e *engine.Engine) (Slot, error) {
	id := uuid.New()
	slot := Slot{
		ID:      id,
		Name:    name,
		Game:    e.Defs.Game.Title,
		Tick:    e.Now(),
		Path:    filepath.Join(s.Dir, id.String()+".sav.zst"),
		SavedAt: time.Now().UTC(),
	}
	if err := WriteFile(slot.Path, e); err != nil {
		return Slot{}, fmt.Errorf("save %q: %w", name, err)
	}
	if err := s.Index.Put(ctx, slot); err != nil {
		return Slot{}, fmt.Errorf("index %q: %w", name, err)
	}
	e.Log.Printf("saved %q at tick %d", name, slot.Tick)
	return slot, nil
}

// Load reads the save in slot id.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*File, error) {
	slot, err := s.Index.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f, err := ReadFile(slot.Path)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", slot.Name, err)
	}
	return f, nil
}

// Latest returns the newest slot saved for game.
func (s *Store) Latest(ctx context.Context, game string) (Slot, error) {
	slots, err := s.Index.List(ctx, game)
	if err != nil {
		return Slot{}, err
	}
	if len(slots) == 0 {
		return Slot{}, ErrNoSlot
	}
	return slots[0], nil
}
