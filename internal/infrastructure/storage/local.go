package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
)

var _ ports.ObjectStorage = (*LocalStorage)(nil)

// LocalStorage guarda los archivos bajo un directorio. Pensado para desarrollo y tests.
type LocalStorage struct {
	dir       string
	urlPrefix string
}

// NewLocalStorage crea el directorio raíz si no existe.
func NewLocalStorage(dir, urlPrefix string) (*LocalStorage, error) {
	if dir == "" {
		dir = "./data/uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", dir, err)
	}
	return &LocalStorage{dir: dir, urlPrefix: urlPrefix}, nil
}

// Upload escribe el archivo. Rechaza claves que escapen del directorio raíz.
func (s *LocalStorage) Upload(ctx context.Context, key string, data []byte, _ string) (ports.StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return ports.StoredObject{}, err
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return ports.StoredObject{}, fmt.Errorf("storage: clave inválida %q", key)
	}
	path := filepath.Join(s.dir, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ports.StoredObject{}, fmt.Errorf("storage: crear directorio: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ports.StoredObject{}, fmt.Errorf("storage: escribir %s: %w", key, err)
	}
	return ports.StoredObject{Key: key, URL: publicURL(s.urlPrefix, key, "file://"+path)}, nil
}
