package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storeqa/storeqa/internal/config"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.Config{}
	cfg.Application.BaseURL = "http://shop.local/"
	cfg.TestSettings.ScreenshotFolder = filepath.Join(t.TempDir(), "shots")
	return NewStore(cfg, zap.NewNop())
}

func TestName(t *testing.T) {
	name := Name("TestLogin", ".png")
	assert.Regexp(t, regexp.MustCompile(`^TestLogin_\d{8}_\d{6}\.png$`), name)
}

func TestNameFlattensSubtests(t *testing.T) {
	name := Name("TestCart/remove_by_cart_id", ".png")
	assert.NotContains(t, name, "/")
	assert.Regexp(t, regexp.MustCompile(`^TestCart_remove_by_cart_id_\d{8}_\d{6}\.png$`), name)

	bracketed := Name("TestErrorShapes[list]", ".trace.zip")
	assert.NotContains(t, bracketed, "[")
	assert.NotContains(t, bracketed, "]")
}

func TestSaveScreenshotWritesLocally(t *testing.T) {
	store := testStore(t)

	data := []byte("png-bytes")
	path, err := store.SaveScreenshot(context.Background(), "TestHomepage", data)
	require.NoError(t, err)

	assert.Equal(t, store.Dir(), filepath.Dir(path))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestNewStoreWithoutEndpointIsLocalOnly(t *testing.T) {
	store := testStore(t)
	assert.Nil(t, store.mirror)

	// Attach on a local-only store is a no-op, not an error.
	store.Attach(context.Background(), "does-not-exist.zip", "application/zip")
}
