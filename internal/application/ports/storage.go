package ports

import "context"

// StoredObject es la referencia a un objeto subido.
type StoredObject struct {
	Key string
	URL string
}

// ObjectStorage sube archivos (evidencias de entrega, documentos de requisitos).
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (StoredObject, error)
}
