package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/pkg/config"
)

var _ ports.ObjectStorage = (*GCSStorage)(nil)

// GCSStorage sube objetos a un bucket de Google Cloud Storage.
type GCSStorage struct {
	client    *gcs.Client
	bucket    string
	urlPrefix string
}

// NewGCSStorage crea el cliente. Prefiere ADC (cuenta de servicio del entorno);
// GCSCredentials permite pasar el JSON explícito en local.
func NewGCSStorage(ctx context.Context, cfg config.StorageConfig) (*GCSStorage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage: bucket requerido")
	}
	var opts []option.ClientOption
	if creds := strings.TrimSpace(cfg.GCSCredentials); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: cliente gcs: %w", err)
	}
	return &GCSStorage{client: client, bucket: cfg.Bucket, urlPrefix: cfg.PublicURLPrefix}, nil
}

// Upload escribe el objeto; el Close del writer confirma la subida.
func (s *GCSStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (ports.StoredObject, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return ports.StoredObject{}, fmt.Errorf("storage: subir %s a gcs: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return ports.StoredObject{}, fmt.Errorf("storage: cerrar %s en gcs: %w", key, err)
	}
	return ports.StoredObject{
		Key: key,
		URL: publicURL(s.urlPrefix, key, fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)),
	}, nil
}

// Close libera el cliente.
func (s *GCSStorage) Close() error { return s.client.Close() }
