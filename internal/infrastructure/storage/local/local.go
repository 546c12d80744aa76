// Package local хранит фотографии в файловой системе (afero.Fs).
//
// В production используется afero.NewOsFs() с каталогом из конфигурации,
// в тестах - afero.NewMemMapFs().
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/infrastructure/storage"
)

// Storage implements ports.FileStorage on top of afero.
type Storage struct {
	fs      afero.Fs
	dir     string
	baseURL string
	logger  *slog.Logger
}

var _ ports.FileStorage = (*Storage)(nil)

// New creates the photo directory if needed.
func New(filesystem afero.Fs, dir, baseURL string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		return nil, fmt.Errorf("local storage: directory is required")
	}
	if err := filesystem.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: create %s: %w", dir, err)
	}
	return &Storage{
		fs:      filesystem,
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}, nil
}

// Store writes the body under a generated name.
func (s *Storage) Store(ctx context.Context, in ports.StoredFileInput) (ports.StoredFile, error) {
	filename, ext := storage.NewFilename(in.ContentType, in.OriginalName)
	name := storage.ObjectName(filename, ext)
	target := path.Join(s.dir, name)

	f, err := s.fs.Create(target)
	if err != nil {
		return ports.StoredFile{}, fmt.Errorf("local storage: create %s: %w", name, err)
	}
	n, copyErr := io.Copy(f, in.Body)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = s.fs.Remove(target)
		return ports.StoredFile{}, fmt.Errorf("local storage: write %s: %w", name, err)
	}

	s.logger.DebugContext(ctx, "file stored", slog.String("file", name), slog.Int64("size", n))
	return ports.StoredFile{
		Filename:    filename,
		Type:        ext,
		URL:         s.baseURL + "/" + name,
		Destination: s.dir,
		Size:        n,
	}, nil
}

// Delete removes the file. Missing files are not an error.
func (s *Storage) Delete(ctx context.Context, name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("local storage: invalid file name %q", name)
	}
	err := s.fs.Remove(path.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local storage: delete %s: %w", name, err)
	}
	return nil
}

// Exists reports whether the file is present.
func (s *Storage) Exists(name string) (bool, error) {
	return afero.Exists(s.fs, path.Join(s.dir, name))
}
