package locate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDbName(t *testing.T) {
	assert.Equal(t, "game.db", dbName(""))
	assert.Equal(t, "game.db", dbName("default"))
	assert.Equal(t, "game-work.db", dbName("work"))
	assert.Equal(t, "game-my-context.db", dbName("my-context"))
}

func TestSanitizeContext(t *testing.T) {
	assert.Equal(t, "work", SanitizeContext("work"))
	assert.Equal(t, "my-context", SanitizeContext("my-context"))
	assert.Equal(t, "my-context", SanitizeContext("My_Context!"))
}

func TestFindProjectDB_WalksUp(t *testing.T) {
	tmp := t.TempDir()
	deepDir := filepath.Join(tmp, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deepDir, 0755))

	gameDir := filepath.Join(tmp, ".goalgame")
	require.NoError(t, os.MkdirAll(gameDir, 0755))

	orig, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(orig) })
	require.NoError(t, os.Chdir(deepDir))

	path, err := FindProjectDB("")
	require.NoError(t, err)
	assert.Equal(t, "game.db", filepath.Base(path))
	assert.Contains(t, path, ".goalgame")
}

func TestFindProjectDB_FallsBackToGlobal(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	deepDir := filepath.Join(tmp, "projects", "myapp")
	require.NoError(t, os.MkdirAll(deepDir, 0755))

	orig, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(orig) })
	require.NoError(t, os.Chdir(deepDir))

	path, err := FindProjectDB("")
	require.NoError(t, err)
	assert.Contains(t, path, ".goalgame")
	assert.Contains(t, path, "game.db")
}

func TestFindProjectDB_EnvOverride(t *testing.T) {
	t.Setenv("GOALGAME_DB", "/tmp/custom.db")
	path, err := FindProjectDB("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", path)
}

func TestFindProjectDB_NamedContext(t *testing.T) {
	tmp := t.TempDir()
	gameDir := filepath.Join(tmp, ".goalgame")
	require.NoError(t, os.MkdirAll(gameDir, 0755))

	orig, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(orig) })
	require.NoError(t, os.Chdir(tmp))

	path, err := FindProjectDB("work")
	require.NoError(t, err)
	assert.Equal(t, "game-work.db", filepath.Base(path))
	assert.Contains(t, path, ".goalgame")
}
