package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/sourcery/sourcery/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.Format)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "sourcery.toml")
	writeFile(t, path, `
log_level = "debug"
input = "model.gltf"
scene = "model.toml"
collection = "Props"
active_game = "HL2"

[[games]]
name = "HL2"
gamedir = "/games/hl2"
`)
	t.Setenv("SOURCERY_COLLECTION", "Weapons")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "model.gltf", cfg.Input)
	assert.Equal(t, "model.gltf", cfg.OutputPath())
	assert.Equal(t, "Weapons", cfg.Collection)
	require.Len(t, cfg.Games, 1)
	assert.Equal(t, "/games/hl2", cfg.Games[0].GameDir)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, ".env"), "SOURCERY_SCENE=from-dotenv.toml\n")
	t.Setenv("SOURCERY_SCENE", "")
	os.Unsetenv("SOURCERY_SCENE")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.toml", cfg.Scene)
}

func TestLoad_BadFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "bad.toml")
	writeFile(t, path, "log_level = [")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "sourcery.toml")

	cfg := Default()
	cfg.Input = "a.glb"
	require.NoError(t, cfg.AddGame(Game{Name: "TF2", GameDir: "/tf"}))
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Games, loaded.Games)
	assert.Equal(t, "a.glb", loaded.Input)
}

func TestGames(t *testing.T) {
	gamedir := t.TempDir()
	writeFile(t, filepath.Join(gamedir, "gameinfo.txt"), `"GameInfo" {}`)

	cfg := Default()
	g, err := cfg.Game()
	require.NoError(t, err)
	assert.Nil(t, g)

	require.NoError(t, cfg.AddGame(Game{Name: "HL2", GameDir: gamedir}))
	require.NoError(t, cfg.AddGame(Game{Name: "Broken", GameDir: t.TempDir()}))
	assert.Error(t, cfg.AddGame(Game{Name: "HL2"}))
	assert.Error(t, cfg.AddGame(Game{}))

	cfg.ActiveGame = "HL2"
	g, err = cfg.Game()
	require.NoError(t, err)
	assert.Equal(t, gamedir, g.GameDir)

	cfg.ActiveGame = "Broken"
	_, err = cfg.Game()
	assert.Error(t, err)

	cfg.ActiveGame = "Portal"
	_, err = cfg.Game()
	assert.ErrorIs(t, err, core.ErrUnknownGame)

	cfg.ActiveGame = "HL2"
	assert.True(t, cfg.RemoveGame("HL2"))
	assert.Empty(t, cfg.ActiveGame)
	assert.False(t, cfg.RemoveGame("HL2"))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate())

	cfg.Input = "a.gltf"
	assert.Error(t, cfg.Validate())

	cfg.Scene = "a.toml"
	assert.NoError(t, cfg.Validate())
}

func TestCollectionOutput(t *testing.T) {
	cfg := Default()
	cfg.Input = filepath.Join("models", "crate.glb")
	assert.Equal(t, filepath.Join("models", "crate_Props.glb"), cfg.CollectionOutput("Props"))
	assert.Equal(t, filepath.Join("models", "crate_a_b.glb"), cfg.CollectionOutput("a/b"))

	cfg.OutputPattern = "{dir}/out/{collection}.gltf"
	assert.Equal(t, filepath.Join("models", "out", "Props.gltf"), cfg.CollectionOutput("Props"))
}

func TestLoadFile_IgnoresEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sourcery.toml")
	writeFile(t, path, "collection = \"FromFile\"\n")
	t.Setenv("SOURCERY_COLLECTION", "FromEnv")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "FromFile", cfg.Collection)

	cfg, err = LoadFile(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
