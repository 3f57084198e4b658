package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/sourcery/sourcery/core"
	"golang.org/x/exp/slices"
)

// Game is a Source Engine game install.
type Game struct {
	Name string `toml:"name"`
	// Folder containing gameinfo.txt
	GameDir string `toml:"gamedir"`
}

func (g *Game) Validate() error {
	if g.GameDir == "" {
		return fmt.Errorf("game '%s' has no game folder", g.Name)
	}
	info := filepath.Join(g.GameDir, "gameinfo.txt")
	if _, err := os.Stat(info); err != nil {
		return fmt.Errorf("game '%s': %w", g.Name, err)
	}
	return nil
}

// Game returns the active game, or nil when none is selected.
func (c *Config) Game() (*Game, error) {
	if c.ActiveGame == "" {
		return nil, nil
	}
	i := slices.IndexFunc(c.Games, func(g Game) bool { return g.Name == c.ActiveGame })
	if i < 0 {
		return nil, fmt.Errorf("%w: '%s'", core.ErrUnknownGame, c.ActiveGame)
	}
	g := &c.Games[i]
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (c *Config) AddGame(g Game) error {
	if g.Name == "" {
		return errors.New("game name is required")
	}
	if slices.ContainsFunc(c.Games, func(e Game) bool { return e.Name == g.Name }) {
		return fmt.Errorf("game '%s' already exists", g.Name)
	}
	c.Games = append(c.Games, g)
	return nil
}

// RemoveGame also clears the active game when it is the one removed.
func (c *Config) RemoveGame(name string) bool {
	n := len(c.Games)
	c.Games = slices.DeleteFunc(c.Games, func(g Game) bool { return g.Name == name })
	if c.ActiveGame == name {
		c.ActiveGame = ""
	}
	return len(c.Games) != n
}
