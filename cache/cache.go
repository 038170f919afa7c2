// Package cache provides disk-backed memoization for functions that fetch
// data by key. Results are persisted under a per-process temp directory so
// repeated lookups within the validity window are served without I/O, even
// across process restarts.
package cache

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Dir is the directory cache files are stored in. It may be overridden
// before the first wrapped call (tests point it at a scratch directory).
var Dir = filepath.Join(os.TempDir(), "iexgo")

// timeNow is swapped out in tests.
var timeNow = time.Now

type entry struct {
	StoredAt time.Time
	Value    msgpack.RawMessage
}

// store is the persisted state of one wrapped function: a key to entry
// map encoded as msgpack in a single file under Dir.
type store struct {
	mu      sync.Mutex
	path    string
	loaded  bool
	entries map[string]entry
}

func newStore(name string) *store {
	return &store{path: filepath.Join(Dir, name+".msgpack")}
}

func (s *store) load() {
	if s.loaded {
		return
	}
	s.loaded = true
	s.entries = map[string]entry{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	// a corrupt or stale-format file is treated as empty
	var entries map[string]entry
	if err := msgpack.Unmarshal(data, &entries); err == nil {
		s.entries = entries
	}
}

func (s *store) flush() {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return
	}
	data, err := msgpack.Marshal(s.entries)
	if err != nil {
		return
	}
	// best effort: a failed write just means the next call misses
	_ = os.WriteFile(s.path, data, 0o644)
}

func (s *store) get(key string, valid func(storedAt time.Time) bool, out interface{}) bool {
	e, ok := s.entries[key]
	if !ok || !valid(e.StoredAt) {
		return false
	}
	return msgpack.Unmarshal(e.Value, out) == nil
}

func (s *store) put(key string, v interface{}) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return
	}
	s.entries[key] = entry{StoredAt: timeNow(), Value: data}
	s.flush()
}

// memoize wraps fn with a disk-backed cache named name whose entries are
// valid while the valid predicate holds for their storage time.
func memoize[T any](name string, valid func(storedAt time.Time) bool, fn func(key string) (T, error)) func(key string) (T, error) {
	s := newStore(name)
	return func(key string) (T, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.load()

		var cached T
		if s.get(key, valid, &cached) {
			return cached, nil
		}
		v, err := fn(key)
		if err != nil {
			return v, err
		}
		s.put(key, v)
		return v, nil
	}
}

// Expire memoizes fn under name. A cached value is served until ttl has
// elapsed since it was stored. Errors are never cached.
func Expire[T any](name string, ttl time.Duration, fn func(key string) (T, error)) func(key string) (T, error) {
	return memoize(name, func(storedAt time.Time) bool {
		return timeNow().Sub(storedAt) < ttl
	}, fn)
}

// Interval memoizes fn under name. A cached value is served while the
// current time falls in the same wall-clock window of length every as the
// store time, so all callers refresh together at window boundaries.
func Interval[T any](name string, every time.Duration, fn func(key string) (T, error)) func(key string) (T, error) {
	return memoize(name, func(storedAt time.Time) bool {
		return timeNow().Truncate(every).Equal(storedAt.Truncate(every))
	}, fn)
}
