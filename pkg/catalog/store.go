package catalog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Sam33128/Gita-pyqvault/pkg/types"
)

// Store persists the catalog as a single JSON document and keeps an
// in-memory snapshot of it. Mutations rewrite the whole document under a
// store-wide lock; reads hand out copies of the snapshot so they never
// observe a write in progress.
type Store struct {
	path   string
	mu     sync.RWMutex
	papers []types.Paper
}

// NewStore opens the catalog document at path, creating an empty one on
// first run. Stored paths that still carry backslashes from older data are
// normalized to forward slashes and written back.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.persist(nil); err != nil {
			return nil, err
		}
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}

	if healed := s.normalizePaths(); healed > 0 {
		log.Printf("[catalog] normalized %d stored path(s) to forward slashes", healed)
	}

	return s, nil
}

// Reload re-reads the document from disk, replacing the in-memory snapshot.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read catalog document: %w", err)
	}

	var papers []types.Paper
	if err := json.Unmarshal(data, &papers); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	s.mu.Lock()
	s.papers = papers
	s.mu.Unlock()
	return nil
}

// Load returns a consistent snapshot of the full catalog in stored order.
func (s *Store) Load() []types.Paper {
	s.mu.RLock()
	defer s.mu.RUnlock()

	papers := make([]types.Paper, len(s.papers))
	copy(papers, s.papers)
	return papers
}

// Get returns the record with the given identifier.
func (s *Store) Get(id string) (types.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.papers {
		if p.ID == id {
			return p, nil
		}
	}
	return types.Paper{}, ErrNotFound
}

// Append validates the record, adds it to the catalog, and persists the
// updated document atomically.
func (s *Store) Append(p types.Paper) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %+v", ErrInvalidRecord, p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.papers {
		if existing.ID == p.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
	}

	updated := append(append([]types.Paper{}, s.papers...), p)
	if err := s.persist(updated); err != nil {
		return err
	}
	s.papers = updated
	return nil
}

// Remove deletes the record with the given identifier and persists. The
// removed record is returned so the caller can delete its file alongside.
func (s *Store) Remove(id string) (types.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.papers {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return types.Paper{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	removed := s.papers[idx]
	updated := append(append([]types.Paper{}, s.papers[:idx]...), s.papers[idx+1:]...)
	if err := s.persist(updated); err != nil {
		return types.Paper{}, err
	}
	s.papers = updated
	return removed, nil
}

// Len returns the number of records in the catalog.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.papers)
}

// Path returns the location of the persisted document.
func (s *Store) Path() string {
	return s.path
}

// persist writes the whole document to a temp file and renames it into
// place so a concurrent reload never sees a half-written document.
func (s *Store) persist(papers []types.Paper) error {
	if papers == nil {
		papers = []types.Paper{}
	}

	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), "catalog-*")
	if err != nil {
		return fmt.Errorf("failed to create temp catalog file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp catalog file: %w", err)
	}

	if err := os.Rename(tempFile.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace catalog document: %w", err)
	}
	return nil
}

// normalizePaths rewrites backslash stored paths to forward slashes and
// persists if anything changed. Returns the number of records fixed.
func (s *Store) normalizePaths() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i, p := range s.papers {
		fixed := strings.ReplaceAll(p.StoredPath, `\`, "/")
		if fixed != p.StoredPath {
			s.papers[i].StoredPath = fixed
			changed++
		}
	}
	if changed > 0 {
		if err := s.persist(s.papers); err != nil {
			log.Printf("[catalog] failed to persist normalized paths: %v", err)
		}
	}
	return changed
}
