// Package cache stores CDash query results as JSON files and keeps recently
// used ones in memory.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dkoosis/cdashreport/pkg/cdash"
	"github.com/dkoosis/cdashreport/pkg/record"
)

const defaultSize = 1024

// Options selects when a cache file is read instead of querying CDash.
type Options struct {
	// UseCached reads the cache file when it exists.
	UseCached bool
	// AlwaysUseCacheFileIfExists reads an existing cache file even when
	// UseCached is off. Test history for past days does not change, so it
	// is reused across runs.
	AlwaysUseCacheFileIfExists bool
	// Size bounds the in-memory entries; 0 means 1024.
	Size int
}

// Store fetches query results through a cdash.Fetcher and keeps them on disk.
type Store struct {
	fetcher cdash.Fetcher
	opts    Options
	mem     *lru.Cache[string, record.Record]
}

// New returns a Store over f.
func New(f cdash.Fetcher, opts Options) (*Store, error) {
	size := opts.Size
	if size <= 0 {
		size = defaultSize
	}
	mem, err := lru.New[string, record.Record](size)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}
	return &Store{fetcher: f, opts: opts, mem: mem}, nil
}

func (s *Store) readsFile() bool {
	return s.opts.UseCached || s.opts.AlwaysUseCacheFileIfExists
}

// Get returns the result of querying url, using file as the cache file.
// fromCache reports whether the result was read from the cache rather than
// from CDash. The caller owns the returned record.
func (s *Store) Get(ctx context.Context, url, file string) (rec record.Record, fromCache bool, err error) {
	if s.readsFile() {
		if r, ok := s.mem.Get(file); ok {
			return r.Clone(), true, nil
		}
		r, err := readFile(file)
		switch {
		case err == nil:
			s.mem.Add(file, r)
			return r.Clone(), true, nil
		case !os.IsNotExist(err):
			return nil, false, err
		}
	}

	r, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, false, err
	}
	if err := writeFile(file, r); err != nil {
		return nil, false, err
	}
	s.mem.Add(file, r)
	return r.Clone(), false, nil
}

// Load is Get under the name history.Loader expects.
func (s *Store) Load(ctx context.Context, url, file string) (record.Record, bool, error) {
	return s.Get(ctx, url, file)
}

func readFile(file string) (record.Record, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	r, err := cdash.DecodePayload(data)
	if err != nil {
		return nil, fmt.Errorf("reading cache file %s: %w", file, err)
	}
	return r, nil
}

func writeFile(file string, r record.Record) error {
	if dir := filepath.Dir(file); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating cache dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache file %s: %w", file, err)
	}
	if err := os.WriteFile(file, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing cache file %s: %w", file, err)
	}
	return nil
}
