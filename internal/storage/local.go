package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalBackend keeps vault files under a directory. File ids are slash
// separated paths relative to the base directory.
type LocalBackend struct {
	basePath string
}

// NewLocalBackend creates a new local backend, creating basePath if needed
func NewLocalBackend(basePath string) (*LocalBackend, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalBackend{basePath: basePath}, nil
}

// BasePath returns the root directory
func (s *LocalBackend) BasePath() string {
	return s.basePath
}

// Path resolves a file id to a filesystem path
func (s *LocalBackend) Path(id string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(id))
}

func (s *LocalBackend) resolve(id string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(id))
	if clean == "/" {
		return s.basePath, nil
	}
	full := filepath.Join(s.basePath, clean)
	if !strings.HasPrefix(full, filepath.Clean(s.basePath)+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid file id: %s", id)
	}
	return full, nil
}

func joinID(parentID, name string) string {
	if parentID == "" {
		return name
	}
	return parentID + "/" + name
}

func (s *LocalBackend) Find(_ context.Context, _ string, name, parentID string, folder bool) ([]FileInfo, error) {
	id := joinID(parentID, name)
	full, err := s.resolve(id)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(full)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", id, err)
	}
	if st.IsDir() != folder {
		return nil, nil
	}
	return []FileInfo{{ID: id, Name: name, Folder: folder, ModifiedAt: st.ModTime()}}, nil
}

func (s *LocalBackend) List(_ context.Context, _ string, parentID string) ([]FileInfo, error) {
	dir, err := s.resolve(parentID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", parentID, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		// skip directories and in-flight temp files
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{ID: joinID(parentID, e.Name()), Name: e.Name(), ModifiedAt: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (s *LocalBackend) Create(_ context.Context, _ string, name, parentID string, data []byte) (FileInfo, error) {
	id := joinID(parentID, name)
	full, err := s.resolve(id)
	if err != nil {
		return FileInfo{}, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return FileInfo{}, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := writeAtomic(full, data); err != nil {
		return FileInfo{}, err
	}
	return FileInfo{ID: id, Name: name}, nil
}

func (s *LocalBackend) Read(_ context.Context, _ string, id string) ([]byte, error) {
	full, err := s.resolve(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return data, nil
}

func (s *LocalBackend) Overwrite(_ context.Context, _ string, id string, data []byte) error {
	full, err := s.resolve(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(full); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return writeAtomic(full, data)
}

func (s *LocalBackend) Delete(_ context.Context, _ string, id string) error {
	full, err := s.resolve(id)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalBackend) Ping(_ context.Context, _ string) error {
	st, err := os.Stat(s.basePath)
	if err != nil {
		return fmt.Errorf("vault directory unavailable: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("vault path is not a directory: %s", s.basePath)
	}
	return nil
}

// writeAtomic writes through a hidden temp file and a rename so readers never
// see a partial document.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
