package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/storage"
	"github.com/jhoicas/homecare-fulfillment/pkg/config"
)

func TestLocalStorage_Upload(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewLocalStorage(dir, "https://cdn.example.com/")
	require.NoError(t, err)

	obj, err := s.Upload(context.Background(), "tenants/t1/deliveries/d1/evidence/e1-foto.jpg", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "tenants/t1/deliveries/d1/evidence/e1-foto.jpg", obj.Key)
	assert.Equal(t, "https://cdn.example.com/tenants/t1/deliveries/d1/evidence/e1-foto.jpg", obj.URL)

	got, err := os.ReadFile(filepath.Join(dir, "tenants", "t1", "deliveries", "d1", "evidence", "e1-foto.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(got))
}

func TestLocalStorage_RechazaClaveFueraDelDirectorio(t *testing.T) {
	s, err := storage.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), "../../etc/passwd", []byte("x"), "text/plain")
	assert.Error(t, err)
}

func TestNew_DriverDesconocido(t *testing.T) {
	_, err := storage.New(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}

func TestNew_S3SinBucket(t *testing.T) {
	_, err := storage.New(context.Background(), config.StorageConfig{Driver: config.StorageS3})
	assert.Error(t, err)
}
