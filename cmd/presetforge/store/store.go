// Package store keeps uploaded images, previews, rendered outputs and
// generated LUTs in fixed subdirectories of one data root.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"presetforge/cmd/presetforge/cubelut"
)

// Kind selects a storage subdirectory.
type Kind string

const (
	LUTs      Kind = "lut_exports"
	Uploads   Kind = "uploads"
	Processed Kind = "processed"
	Outputs   Kind = "outputs"
)

// Kinds lists every directory New creates.
var Kinds = []Kind{LUTs, Uploads, Processed, Outputs}

// LUTExt is the extension of generated LUT files.
const LUTExt = ".cube"

// ErrInvalidName is returned for names that are not a bare filename.
var ErrInvalidName = errors.New("invalid file name")

// Store resolves names inside its root. It holds no open files and is safe
// for concurrent use.
type Store struct {
	root string
}

// New creates the storage directories under root.
func New(root string) (*Store, error) {
	for _, k := range Kinds {
		if err := os.MkdirAll(filepath.Join(root, string(k)), 0755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", k, err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the data root.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the directory for k.
func (s *Store) Dir(k Kind) string {
	return filepath.Join(s.root, string(k))
}

// NewToken returns a random 32 character hex token.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Resolve maps a bare filename to its path inside k.
func (s *Store) Resolve(k Kind, name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.Dir(k), name), nil
}

// Save writes data to a new file name in k.
func (s *Store) Save(k Kind, name string, data []byte) (string, error) {
	return s.Create(k, name, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// Create opens name in k exclusively and lets write fill it. The file is
// removed if write fails.
func (s *Store) Create(k Kind, name string, write func(io.Writer) error) (string, error) {
	path, err := s.Resolve(k, name)
	if err != nil {
		return "", err
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", err
	}
	if err := write(file); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	logrus.WithFields(logrus.Fields{"kind": k, "file": name}).Debug("stored")
	return path, nil
}

// WriteLUT generates a LUT into lut_exports/name.
func (s *Store) WriteLUT(name, title string, size int, dominant cubelut.ColorTriplet) (string, error) {
	if size < 2 {
		return "", fmt.Errorf("%w: %d (must be at least 2)", cubelut.ErrInvalidGridSize, size)
	}
	path, err := s.Resolve(LUTs, name)
	if err != nil {
		return "", err
	}
	if err := cubelut.WriteFile(path, title, size, dominant); err != nil {
		return "", err
	}
	logrus.WithFields(logrus.Fields{"file": name, "size": size, "dominant": dominant}).Info("LUT generated")
	return path, nil
}

// ExtractLUT reads the tone shift of lut_exports/name.
func (s *Store) ExtractLUT(name string) (cubelut.ToneShift, error) {
	path, err := s.Resolve(LUTs, name)
	if err != nil {
		return cubelut.ToneShift{}, err
	}
	return cubelut.ExtractFile(path)
}

// OpenLUT opens lut_exports/name for reading. The caller closes it.
func (s *Store) OpenLUT(name string) (*os.File, error) {
	path, err := s.Resolve(LUTs, name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", cubelut.ErrNotFound, name)
		}
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%w: %s", cubelut.ErrNotFound, name)
	}
	return file, nil
}

// LUTName returns the LUT filename for a token.
func LUTName(token string) string {
	return token + LUTExt
}
