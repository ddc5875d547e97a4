package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"listingscraper/pkg/errors"
)

// ImageExt is the extension given to every saved image
const ImageExt = ".jpg"

// Manager creates listing directories under a base directory
type Manager struct {
	baseDir string
	mu      sync.Mutex
	created map[string]bool
}

// NewManager creates a new storage manager rooted at baseDir
func NewManager(baseDir string) (*Manager, error) {
	if baseDir == "" {
		baseDir = "."
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeFilesystem, err, "create output directory %q", baseDir)
	}

	return &Manager{
		baseDir: baseDir,
		created: make(map[string]bool),
	}, nil
}

// BaseDir returns the output directory path
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// ListingDir returns the directory for a listing, creating it if needed.
// created is true only when this call made the directory. Two listings
// with the same name share one directory.
func (m *Manager) ListingDir(name string) (*Dir, bool, error) {
	if name == "" || name == "." || name == ".." {
		return nil, false, errors.New(errors.ErrorTypeFilesystem, "invalid listing directory name %q", name)
	}

	path := filepath.Join(m.baseDir, name)

	m.mu.Lock()
	defer m.mu.Unlock()

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return &Dir{path: path}, false, nil
	case err == nil:
		return nil, false, errors.New(errors.ErrorTypeFilesystem, "%q exists and is not a directory", path)
	case !os.IsNotExist(err):
		return nil, false, errors.Wrap(errors.ErrorTypeFilesystem, err, "stat %q", path)
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, false, errors.Wrap(errors.ErrorTypeFilesystem, err, "create listing directory %q", path)
	}
	m.created[path] = true

	return &Dir{path: path}, true, nil
}

// CreatedCount returns how many listing directories this manager created
func (m *Manager) CreatedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

// Dir is one listing's image directory
type Dir struct {
	path string
}

// OpenDir wraps an existing directory
func OpenDir(path string) (*Dir, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeFilesystem, err, "open directory %q", path)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrorTypeFilesystem, "%q is not a directory", path)
	}
	return &Dir{path: path}, nil
}

// Path returns the directory path
func (d *Dir) Path() string {
	return d.path
}

// ImagePath returns where the image with the given index is stored
func (d *Dir) ImagePath(index int) string {
	return filepath.Join(d.path, strconv.Itoa(index)+ImageExt)
}

// SaveImage writes data as "<index>.jpg", replacing any existing file
func (d *Dir) SaveImage(index int, data []byte) (string, error) {
	return d.SaveImageFrom(index, bytes.NewReader(data))
}

// SaveImageFrom writes the contents of r as "<index>.jpg"
func (d *Dir) SaveImageFrom(index int, r io.Reader) (string, error) {
	if index < 1 {
		return "", errors.New(errors.ErrorTypeFilesystem, "image index must be positive, got %d", index)
	}

	filename := d.ImagePath(index)

	out, err := os.CreateTemp(d.path, fmt.Sprintf(".%d-*.tmp", index))
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeFilesystem, err, "create temporary file")
	}
	tempFile := out.Name()

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", errors.Wrap(errors.ErrorTypeFilesystem, err, "write image data")
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", errors.Wrap(errors.ErrorTypeFilesystem, closeErr, "close image file")
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return "", errors.Wrap(errors.ErrorTypeFilesystem, err, "set image permissions")
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", errors.Wrap(errors.ErrorTypeFilesystem, err, "rename temporary file")
	}

	return filename, nil
}
