// Package files stores the uploaded paper assets on disk. References are
// forward-slash paths relative to the uploads root; the catalog records
// them but the repository owns the bytes.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

var (
	// ErrNotFound means the reference does not resolve to a stored file.
	ErrNotFound = errors.New("file not found")
	// ErrCollision means a file with the resolved name already exists.
	ErrCollision = errors.New("file name collision")
	// ErrUnsupportedType means the file kind is not on the allow-list.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrInvalidReference means the reference escapes the uploads root.
	ErrInvalidReference = errors.New("invalid file reference")
)

// DefaultAllowedExtensions is the document/image allow-list.
var DefaultAllowedExtensions = []string{"pdf", "jpg", "jpeg", "png"}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Repository stores uploaded assets under a base directory.
type Repository struct {
	basePath string
	allowed  map[string]struct{}

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-reference write/delete serialization
}

// NewRepository creates a repository rooted at basePath. A nil or empty
// extension list falls back to the default allow-list.
func NewRepository(basePath string, allowedExtensions []string) (*Repository, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	if len(allowedExtensions) == 0 {
		allowedExtensions = DefaultAllowedExtensions
	}

	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	return &Repository{
		basePath: basePath,
		allowed:  allowed,
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

// Allowed reports whether the filename's extension is on the allow-list.
func (r *Repository) Allowed(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	_, ok := r.allowed[ext]
	return ok
}

// SanitizeFilename reduces a client-supplied filename to a safe basename:
// path separators dropped, unsafe characters collapsed to underscores.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	return name
}

// Store writes the asset under dir/name relative to the uploads root and
// returns the resolved reference. The file kind must be on the allow-list
// and the resolved name must not already exist; an existing file fails with
// ErrCollision rather than being overwritten.
func (r *Repository) Store(reader io.Reader, dir, name string) (string, error) {
	name = SanitizeFilename(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty filename", ErrInvalidReference)
	}
	if !r.Allowed(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, name)
	}

	ref := path.Join(normalizeRef(dir), name)
	targetPath, err := r.resolve(ref)
	if err != nil {
		return "", err
	}

	unlock := r.lockRef(ref)
	defer unlock()

	if _, err := os.Stat(targetPath); err == nil {
		return "", fmt.Errorf("%w: %s", ErrCollision, ref)
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create target directory: %w", err)
	}

	tempFile, err := os.CreateTemp(r.basePath, "upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := io.Copy(tempFile, reader); err != nil {
		tempFile.Close()
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempFile.Name(), targetPath); err != nil {
		return "", fmt.Errorf("failed to place upload: %w", err)
	}

	return ref, nil
}

// Retrieve opens the stored asset for reading.
func (r *Repository) Retrieve(ref string) (*os.File, error) {
	targetPath, err := r.resolve(normalizeRef(ref))
	if err != nil {
		return nil, err
	}

	file, err := os.Open(targetPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, err
	}
	return file, nil
}

// Delete removes the stored asset.
func (r *Repository) Delete(ref string) error {
	ref = normalizeRef(ref)
	targetPath, err := r.resolve(ref)
	if err != nil {
		return err
	}

	unlock := r.lockRef(ref)
	defer unlock()

	if err := os.Remove(targetPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return err
	}
	return nil
}

// Exists reports whether the reference resolves to a stored file.
func (r *Repository) Exists(ref string) bool {
	targetPath, err := r.resolve(normalizeRef(ref))
	if err != nil {
		return false
	}
	_, err = os.Stat(targetPath)
	return err == nil
}

// Walk calls fn with the reference of every stored asset.
func (r *Repository) Walk(fn func(ref string) error) error {
	return filepath.Walk(r.basePath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(r.basePath, p)
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(rel))
	})
}

// BasePath returns the uploads root.
func (r *Repository) BasePath() string {
	return r.basePath
}

// resolve maps a reference to an absolute path, rejecting anything that
// escapes the uploads root.
func (r *Repository) resolve(ref string) (string, error) {
	if ref == "" || path.IsAbs(ref) {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	cleaned := path.Clean(ref)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	return filepath.Join(r.basePath, filepath.FromSlash(cleaned)), nil
}

// lockRef serializes store/delete on the same reference. Distinct
// references proceed independently. Entries are never pruned: one mutex
// per stored name, bounded by the archive size.
func (r *Repository) lockRef(ref string) func() {
	r.mu.Lock()
	lock, ok := r.locks[ref]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[ref] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func normalizeRef(ref string) string {
	ref = strings.ReplaceAll(ref, `\`, "/")
	for strings.Contains(ref, "//") {
		ref = strings.ReplaceAll(ref, "//", "/")
	}
	return strings.Trim(ref, "/")
}
