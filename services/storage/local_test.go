package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir, "http://localhost:3000/")
	ctx := context.Background()

	url, err := s.Upload(ctx, "documents/certificates/CRS0001-U0001-1.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/documents/certificates/CRS0001-U0001-1.pdf", url)

	data, err := os.ReadFile(filepath.Join(dir, "documents", "certificates", "CRS0001-U0001-1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	require.NoError(t, s.Delete(ctx, "documents/certificates/CRS0001-U0001-1.pdf"))
	_, err = os.Stat(filepath.Join(dir, "documents", "certificates", "CRS0001-U0001-1.pdf"))
	assert.True(t, os.IsNotExist(err))

	// deleting a missing object is not an error
	assert.NoError(t, s.Delete(ctx, "documents/certificates/missing.pdf"))
}

func TestLocalStorageStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir, "http://x")

	url, err := s.Upload(context.Background(), "../../escape.txt", []byte("x"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "http://x/escape.txt", url)
	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.NoError(t, err)
}
