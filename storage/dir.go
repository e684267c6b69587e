package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	// ErrFileNotFound indicates a name with no stored bytes for that user.
	ErrFileNotFound = errors.New("storage: file not found")

	// ErrInvalidName indicates a name that could escape or collide with the
	// namespace layout.
	ErrInvalidName = errors.New("storage: invalid name")
)

// MaxNameLength matches typical filesystem limits.
const MaxNameLength = 255

// Dir is a root directory of per-user file namespaces.
type Dir struct {
	root string
}

// NewDir creates the storage root if needed.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewDir",
		"root":     root,
	}).Info("Storage root ready")
	return &Dir{root: root}, nil
}

// Root returns the storage root path.
func (d *Dir) Root() string {
	return d.root
}

// ValidateName rejects names unusable as a single path component: empty,
// overlong, path separators, or traversal elements.
func ValidateName(name string) error {
	if name == "" || len(name) > MaxNameLength {
		return ErrInvalidName
	}
	if name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, "/\\\x00\n\r") {
		return ErrInvalidName
	}
	if name != filepath.Base(filepath.Clean(name)) {
		return ErrInvalidName
	}
	return nil
}

// Provision creates username's namespace directory.
func (d *Dir) Provision(username string) error {
	if err := ValidateName(username); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(d.root, username), 0o700); err != nil {
		return fmt.Errorf("storage: provision %s: %w", username, err)
	}
	return nil
}

// Save writes data as username's file name, replacing any previous content.
func (d *Dir) Save(username, name string, data []byte) error {
	path, err := d.filePath(username, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage: save %s: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("storage: save %s: %w", name, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Save",
		"user":     username,
		"file":     name,
		"bytes":    len(data),
	}).Debug("File stored")
	return nil
}

// Load returns the stored bytes for username's file name.
func (d *Dir) Load(username, name string) ([]byte, error) {
	path, err := d.filePath(username, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("storage: load %s: %w", name, err)
	}
	return data, nil
}

// List returns the file names in username's namespace, sorted. A user with
// no namespace yet has no files.
func (d *Dir) List(username string) ([]string, error) {
	if err := ValidateName(username); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(d.root, username))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: list %s: %w", username, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (d *Dir) filePath(username, name string) (string, error) {
	if err := ValidateName(username); err != nil {
		return "", err
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(d.root, username, name), nil
}
