package schedule

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CacheEntry is the gob form of a parsed itinerary, tagged with the location
// and content digest it was parsed from. Ordered stop sequences are rebuilt
// on load, only the runs are stored.
type CacheEntry struct {
	Location string
	Digest   string
	Runs     []Run
}

// Digest returns the hex SHA-256 of an itinerary document.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NewCacheEntry captures store as parsed from data at location.
func NewCacheEntry(store *Store, location string, data []byte) *CacheEntry {
	runs := make([]Run, 0, store.Len())
	for _, r := range store.Runs() {
		runs = append(runs, *r)
	}
	return &CacheEntry{Location: location, Digest: Digest(data), Runs: runs}
}

// Matches reports whether the entry was built from location with the given
// digest. An empty digest matches any content of location.
func (e *CacheEntry) Matches(location, digest string) bool {
	if e == nil || e.Location != location {
		return false
	}
	return digest == "" || e.Digest == digest
}

// Store rebuilds the Store held by the entry.
func (e *CacheEntry) Store() *Store {
	return NewStore(e.Runs)
}

// WriteCache encodes entry to w using gob encoding.
func WriteCache(w io.Writer, entry *CacheEntry) error {
	if err := gob.NewEncoder(w).Encode(entry); err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}
	return nil
}

// ReadCache decodes an entry previously produced by WriteCache.
func ReadCache(r io.Reader) (*CacheEntry, error) {
	var entry CacheEntry
	if err := gob.NewDecoder(r).Decode(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode schedule: %w", err)
	}
	return &entry, nil
}

// WriteCacheFile writes entry to path, replacing any previous file atomically.
func WriteCacheFile(path string, entry *CacheEntry) error {
	var buf bytes.Buffer
	if err := WriteCache(&buf, entry); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// ReadCacheFile reads an entry from a gob file.
//
// Example:
//
//	entry, err := schedule.ReadCacheFile("/cache/itinerary.gob")
//	if err != nil {
//	    // Cache miss or corrupted, load the JSON document instead
//	}
func ReadCacheFile(path string) (*CacheEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return ReadCache(bytes.NewReader(data))
}

// CacheOutcome says where LoadCached took its runs from.
type CacheOutcome int

const (
	// CacheMiss means the document was parsed and the cache rewritten.
	CacheMiss CacheOutcome = iota
	// CacheHit means the document was unchanged and the cached runs were used.
	CacheHit
	// CacheFallback means the source failed and the cached runs of the same
	// location were used.
	CacheFallback
)

func (o CacheOutcome) String() string {
	switch o {
	case CacheHit:
		return "hit"
	case CacheFallback:
		return "fallback"
	default:
		return "miss"
	}
}

// CacheStatus reports how LoadCached went. FetchErr is set on fallback;
// CacheErr carries a non-fatal failure to read or write the cache file.
type CacheStatus struct {
	Outcome  CacheOutcome
	FetchErr error
	CacheErr error
}

// LoadCached loads the itinerary at location through a gob cache at
// cachePath. The source is always consulted: the cache is used only when it
// was built from the same location and identical content, or, when the
// source cannot be fetched, as the last good copy of that location. An empty
// cachePath disables the cache.
func LoadCached(ctx context.Context, src *Source, location, cachePath string) (*Store, CacheStatus, error) {
	var status CacheStatus
	if cachePath == "" {
		store, err := src.Load(ctx, location)
		return store, status, err
	}

	entry, err := ReadCacheFile(cachePath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		status.CacheErr = err
	}

	data, err := src.Fetch(ctx, location)
	if err != nil {
		if entry.Matches(location, "") {
			status.Outcome = CacheFallback
			status.FetchErr = err
			return entry.Store(), status, nil
		}
		return nil, status, err
	}

	if entry.Matches(location, Digest(data)) {
		status.Outcome = CacheHit
		return entry.Store(), status, nil
	}

	store, err := NewStoreFromBytes(data)
	if err != nil {
		return nil, status, fmt.Errorf("%s: %w", location, err)
	}
	if err := WriteCacheFile(cachePath, NewCacheEntry(store, location, data)); err != nil {
		status.CacheErr = err
	}
	return store, status, nil
}
