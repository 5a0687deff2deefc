package service

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cragbook/cragbook-server/internal/media/images"
	"github.com/cragbook/cragbook-server/internal/store"
)

// testEnv bundles a real store and image storages on temp directories.
type testEnv struct {
	store *store.Store
	faces *images.Storage
	memes *images.Storage
	log   *slog.Logger
}

func setupTestEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "service-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	faces, err := images.NewFaceStorage(tmpDir)
	require.NoError(t, err)
	memes, err := images.NewMemeStorage(tmpDir)
	require.NoError(t, err)

	env := &testEnv{
		store: st,
		faces: faces,
		memes: memes,
		log:   slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	}
	cleanup := func() {
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}
	return env, cleanup
}
