// Package save persists quiescent worlds as zstd-compressed JSON, keeps a
// sqlite index of save slots, and journals engine events.
package save

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/nathoo/runecore/engine"
)

// Version is the save format version written by this package.
const Version = 1

// ErrTurnInFlight is returned when saving while an action is part way through.
var ErrTurnInFlight = engine.ErrTurnInFlight

// Header is the first line of a save file, readable without decoding the
// world.
type Header struct {
	Version int       `json:"version"`
	Game    string    `json:"game"`
	Tick    int       `json:"tick"`
	SavedAt time.Time `json:"saved_at"`
}

// File is a decoded save.
type File struct {
	Header Header           `json:"header"`
	World  *engine.Snapshot `json:"world"`
}

// Write snapshots e and writes it to w. The world must be between turns.
func Write(w io.Writer, e *engine.Engine) error {
	snap, err := e.Snapshot()
	if err != nil {
		return err
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)

	f := File{
		Header: Header{Version: Version, Game: e.Defs.Game.Title, Tick: snap.Now, SavedAt: time.Now().UTC()},
		World:  snap,
	}
	hb, err := json.Marshal(f.Header)
	if err != nil {
		_ = enc.Close()
		return err
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		_ = enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(f.World); err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode world: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// Read decodes a save written by Write.
func Read(r io.Reader) (*File, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var f File
	if err := json.Unmarshal(line, &f.Header); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	if f.Header.Version != Version {
		return nil, fmt.Errorf("save version %d not supported", f.Header.Version)
	}
	f.World = &engine.Snapshot{}
	if err := json.NewDecoder(br).Decode(f.World); err != nil {
		return nil, fmt.Errorf("decode world: %w", err)
	}
	return &f, nil
}

// WriteFile saves e to path, creating its directory.
func WriteFile(path string, e *engine.Engine) error {
	if e.InFlight() {
		return ErrTurnInFlight
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := Write(f, e); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// ReadFile reads a save from path.
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Apply restores f into e, a fresh engine built from the same game.
func Apply(e *engine.Engine, f *File, agentFor func(b *engine.Being) engine.Agent) error {
	if f.World == nil {
		return errors.New("save has no world")
	}
	if f.Header.Game != e.Defs.Game.Title {
		return fmt.Errorf("save is for %q, not %q", f.Header.Game, e.Defs.Game.Title)
	}
	return e.Restore(f.World, agentFor)
}
