// Package storage implementa ports.ObjectStorage sobre S3 (o compatible), Google Cloud Storage
// y disco local para desarrollo.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/pkg/config"
)

// New construye el backend indicado por STORAGE_DRIVER.
func New(ctx context.Context, cfg config.StorageConfig) (ports.ObjectStorage, error) {
	switch cfg.Driver {
	case config.StorageS3:
		return NewS3Storage(ctx, cfg)
	case config.StorageGCS:
		return NewGCSStorage(ctx, cfg)
	case config.StorageLocal, "":
		return NewLocalStorage(cfg.LocalDir, cfg.PublicURLPrefix)
	}
	return nil, fmt.Errorf("storage: driver desconocido %q", cfg.Driver)
}

// publicURL arma la URL de descarga: prefijo público si está configurado, si no el fallback del backend.
func publicURL(prefix, key, fallback string) string {
	if prefix == "" {
		return fallback
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(key, "/")
}
