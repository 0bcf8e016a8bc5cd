package save

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/types"
)

// Journal appends every event it is handed as one JSON line to a zstd
// stream.
type Journal struct {
	mu  sync.Mutex
	c   io.Closer
	enc *zstd.Encoder
	w   *bufio.Writer
	err error
}

// NewJournal writes to w. Closing the journal does not close w.
func NewJournal(w io.Writer) (*Journal, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	return &Journal{enc: enc, w: bufio.NewWriterSize(enc, 64*1024)}, nil
}

// CreateJournal writes to a new file at path.
func CreateJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	j, err := NewJournal(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	j.c = f
	return j, nil
}

// Attach subscribes the journal to every event e publishes.
func (j *Journal) Attach(e *engine.Engine) {
	e.Subscribe("", func(ev types.Event) {
		if err := j.Write(ev); err != nil {
			e.Log.Printf("journal: %v", err)
		}
	})
}

// Write appends ev. After the first failure every write returns that
// error.
func (j *Journal) Write(ev types.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := j.w.Write(append(b, '\n')); err != nil {
		j.err = err
	}
	return j.err
}

// Close flushes the stream and closes the file it was created on.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	err := j.w.Flush()
	err = errors.Join(err, j.enc.Close())
	if j.c != nil {
		err = errors.Join(err, j.c.Close())
	}
	if j.err == nil {
		j.err = errors.New("journal closed")
	}
	return err
}

// ReadJournal decodes every event in a journal stream.
func ReadJournal(r io.Reader) ([]types.Event, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []types.Event
	jd := json.NewDecoder(dec)
	for {
		var ev types.Event
		if err := jd.Decode(&ev); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, err
		}
		out = append(out, ev)
	}
}
