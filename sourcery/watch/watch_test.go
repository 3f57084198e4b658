package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/sourcery/sourcery/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineKind(t *testing.T) {
	assert.Equal(t, KindScene, determineKind("a/b.toml"))
	assert.Equal(t, KindGLTF, determineKind("a/b.GLB"))
	assert.Equal(t, KindGLTF, determineKind("b.gltf"))
	assert.Equal(t, KindNone, determineKind("b.bin"))
}

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	scenePath := filepath.Join(dir, "scene.toml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(scenePath, []byte(""), 0o644))

	w, err := New()
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond
	require.NoError(t, w.Add(scenePath))
	w.Start()
	defer w.Close()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(scenePath, []byte("[objects.A]\n"), 0o644))

	select {
	case e := <-w.Events():
		assert.Equal(t, scenePath, e.Path)
		assert.Equal(t, KindScene, e.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}
}

func TestWatcher_Close(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	w.Start()

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Close(), core.ErrWatcherClosed)
	assert.ErrorIs(t, w.Add("x.toml"), core.ErrWatcherClosed)

	select {
	case _, ok := <-w.Events():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("events channel not closed")
	}
}
