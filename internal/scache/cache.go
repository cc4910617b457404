// Package scache stores solved tilings on disk, keyed by a digest of the
// problem, so repeated runs over the same target skip the search.
package scache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"mulforge/internal/geom"
	"mulforge/internal/tile"
	"mulforge/internal/tiling"
)

// Current schema version - increment when Payload format changes
const schemaVersion uint16 = 1

// ErrStale is returned when a cached solution no longer matches the library.
var ErrStale = errors.New("scache: stale entry")

// Cache is a directory of msgpack solution files. A nil *Cache is a disabled
// cache. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Payload is the on-disk form of a solution.
type Payload struct {
	Schema   uint16
	Strategy string
	GridW    int
	GridH    int
	Cost     float64
	Entries  []Entry
	Created  int64 // unix seconds
}

// Entry is one placement, with its shape referenced by name.
type Entry struct {
	Shape    string
	X        int
	Y        int
	Width    int
	Height   int
	Length   int
	SignedX  bool
	SignedY  bool
	Clipped  bool
	Expanded bool
}

// Open returns a cache rooted at dir, creating it if needed.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// OpenDefault opens the cache at the standard per-user location.
func OpenDefault(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return Open(filepath.Join(base, app))
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(key Digest) string {
	hexKey := key.String()
	return filepath.Join(c.dir, "tilings", hexKey[:2], hexKey+".mp")
}

// Put stores sol under key. Failed solutions are not stored.
func (c *Cache) Put(key Digest, strategy string, g geom.Grid, sol tiling.Solution) error {
	if c == nil || sol.Failed() {
		return nil
	}
	payload := Payload{
		Schema:   schemaVersion,
		Strategy: strategy,
		GridW:    g.W,
		GridH:    g.H,
		Cost:     sol.Cost,
		Entries:  make([]Entry, 0, len(sol.Entries)),
		Created:  time.Now().Unix(),
	}
	for _, e := range sol.Entries {
		s := e.Param.Signed()
		payload.Entries = append(payload.Entries, Entry{
			Shape:    e.Param.Shape().Name(),
			X:        e.Anchor.X,
			Y:        e.Anchor.Y,
			Width:    e.Param.Width(),
			Height:   e.Param.Height(),
			Length:   e.Param.Length(),
			SignedX:  s.X,
			SignedY:  s.Y,
			Clipped:  e.Param.Clipped(),
			Expanded: e.Param.Expanded(),
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		f.Close()
		return fmt.Errorf("scache: encode %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Get loads the solution stored under key and rebinds its entries to the
// shapes of lib. A missing entry or an older schema is a miss; an entry that
// names a shape lib lacks returns ErrStale.
func (c *Cache) Get(key Digest, lib *tile.Library) (tiling.Solution, bool, error) {
	if c == nil {
		return tiling.Solution{}, false, nil
	}
	payload, ok, err := c.load(key)
	if err != nil || !ok {
		return tiling.Solution{}, false, err
	}
	if payload.Schema != schemaVersion {
		return tiling.Solution{}, false, nil
	}

	sol := tiling.Solution{Cost: payload.Cost, Entries: make([]tiling.Placement, 0, len(payload.Entries))}
	for i, e := range payload.Entries {
		s, ok := lib.Lookup(e.Shape)
		if !ok {
			return tiling.Solution{}, false, fmt.Errorf("%w: entry %d names unknown shape %q", ErrStale, i, e.Shape)
		}
		param := tile.Restore(s, e.Width, e.Height, e.Length, geom.Signedness{X: e.SignedX, Y: e.SignedY}, e.Clipped, e.Expanded)
		sol.Entries = append(sol.Entries, tiling.Placement{Param: param, Anchor: geom.Coord{X: e.X, Y: e.Y}})
	}
	return sol, true, nil
}

func (c *Cache) load(key Digest) (*Payload, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("scache: decode %s: %w", key, err)
	}
	return &payload, true, nil
}

// DropAll removes every cached solution.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := filepath.Join(c.dir, "tilings.old-"+time.Now().Format("20060102150405"))
	if err := os.Rename(filepath.Join(c.dir, "tilings"), old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
