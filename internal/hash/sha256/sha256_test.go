package sha256

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const helloDigest = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func TestDigestKnownValue(t *testing.T) {
	t.Parallel()

	require.Equal(t, helloDigest, Digest([]byte("hello world")))
	require.Equal(t, Digest([]byte("hello world")), Digest([]byte("hello world")))
}

func TestFileMatchesDigest(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "names.md")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o600))

	got, err := File(path)
	require.NoError(t, err)
	require.Equal(t, helloDigest, got)

	_, err = File(filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
}
