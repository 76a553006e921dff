package upload

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageStoreSaveAndOpen(t *testing.T) {
	store, err := NewImageStore(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("widget.png", "image/png", strings.NewReader("png bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "_widget.png"), "stored name keeps the original base name")

	rc, err := store.Open(name)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(b))
}

func TestImageStoreRejectsNonImages(t *testing.T) {
	store, err := NewImageStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("evil.exe", "application/octet-stream", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.Save("page.html", "text/html", strings.NewReader("<html>"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestImageStoreOpenStripsPathTraversal(t *testing.T) {
	store, err := NewImageStore(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("pic.jpg", "image/jpeg", strings.NewReader("jpg bytes"))
	require.NoError(t, err)

	// a hostile reference resolves to its base name inside the store
	rc, err := store.Open("../../etc/" + name)
	require.NoError(t, err)
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "jpg bytes", string(b))

	_, err = store.Open("../../etc/passwd")
	assert.Error(t, err)
}
