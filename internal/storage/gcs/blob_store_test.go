package gcs

import (
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{Bucket: "bucket"})
	require.Error(t, err)

	_, err = New(&storage.Client{}, Config{Bucket: "  "})
	require.Error(t, err)

	store, err := New(&storage.Client{}, Config{Bucket: "bucket", Prefix: "/runs/"})
	require.NoError(t, err)
	require.Equal(t, "runs", store.prefix)
}

func TestObjectName(t *testing.T) {
	t.Parallel()

	store := &BlobStore{bucket: "bucket"}
	require.Equal(t, "error_page_A.png", store.objectName("/error_page_A.png"))

	store.prefix = "diagnostics/2026"
	require.Equal(t, "diagnostics/2026/error_page_A.png", store.objectName("error_page_A.png"))
}
