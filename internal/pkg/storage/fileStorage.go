package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileStorage keeps uploads on local disk while a transform runs.
type FileStorage interface {
	Save(name string, data io.Reader) error
	Get(name string) (io.ReadCloser, error)
	Delete(name string) error
	Exists(name string) bool
}

type fileStorage struct {
	basePath string
}

func NewFileStorage(basePath string) (FileStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir %q: %w", basePath, err)
	}
	return &fileStorage{basePath: basePath}, nil
}

// StageName returns a collision-free file name of the form
// <unix-nanos>-<uuid><ext>.
func StageName(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString(), strings.ToLower(ext))
}

func (s *fileStorage) resolve(name string) (string, error) {
	clean := filepath.Clean(name)
	if clean == "." || filepath.IsAbs(clean) || clean != filepath.Base(clean) {
		return "", fmt.Errorf("invalid staging name %q", name)
	}
	return filepath.Join(s.basePath, clean), nil
}

func (s *fileStorage) Save(name string, data io.Reader) error {
	fullPath, err := s.resolve(name)
	if err != nil {
		return err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return err
	}

	if _, err = io.Copy(file, data); err != nil {
		file.Close()
		os.Remove(fullPath)
		return err
	}
	return file.Close()
}

func (s *fileStorage) Get(name string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

func (s *fileStorage) Delete(name string) error {
	fullPath, err := s.resolve(name)
	if err != nil {
		return err
	}
	return os.Remove(fullPath)
}

func (s *fileStorage) Exists(name string) bool {
	fullPath, err := s.resolve(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(fullPath)
	return err == nil
}
