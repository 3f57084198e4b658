package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/spaghettifunk/sourcery/sourcery/config"
	"github.com/spaghettifunk/sourcery/sourcery/core"
	"github.com/spaghettifunk/sourcery/sourcery/export"
	"github.com/spaghettifunk/sourcery/sourcery/extension"
	"github.com/spaghettifunk/sourcery/sourcery/metadata"
	"github.com/spaghettifunk/sourcery/sourcery/scene"
)

func parseExportFlags(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	configPath := fs.String("config", "sourcery.toml", "Path to the configuration file.")
	input := fs.String("i", "", "glTF/GLB file written by the exporter.")
	output := fs.String("o", "", "Output file, defaults to the input file.")
	format := fs.String("format", "", "Output format: auto, gltf or glb.")
	scenePath := fs.String("scene", "", "TOML sidecar with collection and object metadata.")
	collection := fs.String("collection", "", "Collection being exported.")
	game := fs.String("game", "", "Active game from the configuration.")
	logLevel := fs.String("log-level", "", "debug, info, warn or error.")
	watchMode := fs.Bool("watch", false, "Re-export whenever the sidecar or input changes.")
	all := fs.Bool("all", false, "Export every collection of the sidecar, one file each.")
	pattern := fs.String("output-pattern", "", "Per-collection output name for -all, e.g. {dir}/{name}_{collection}{ext}.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.Input = *input
		case "o":
			cfg.Output = *output
		case "format":
			cfg.Format = *format
		case "scene":
			cfg.Scene = *scenePath
		case "collection":
			cfg.Collection = *collection
		case "game":
			cfg.ActiveGame = *game
		case "log-level":
			cfg.LogLevel = *logLevel
		case "watch":
			cfg.Watch = *watchMode
		case "all":
			cfg.All = *all
		case "output-pattern":
			cfg.OutputPattern = *pattern
		}
	})
	return cfg, nil
}

func runInspect(args []string, w io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: sourcery inspect <file.gltf|file.glb>")
	}
	ins, err := export.InspectFile(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Collection *extension.Payload            `json:"collection,omitempty"`
		Nodes      map[string]*extension.Payload `json:"nodes,omitempty"`
	}{ins.Collection, ins.Nodes})
}

func runTag(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("tag", flag.ContinueOnError)
	scenePath := fs.String("scene", "", "TOML sidecar to edit.")
	collision := fs.String("collision", "AUTO", "Collision mode: AUTO, MESH, HULL, BOX or NONE.")
	hidden := fs.Bool("hidden", false, "Mark the objects as not visible.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	mode, err := metadata.ParseCollisionMode(*collision)
	if err != nil {
		return err
	}
	s, err := scene.Load(*scenePath)
	if err != nil {
		return err
	}
	last, err := s.TagObjects(fs.Args(), metadata.Tags{CollisionMode: mode, Visible: !*hidden})
	if err != nil {
		return err
	}
	if err := s.Save(*scenePath); err != nil {
		return err
	}
	fmt.Fprintf(w, "tagged up to '%s'\n", last)
	return nil
}

func runClear(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	scenePath := fs.String("scene", "", "TOML sidecar to edit.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := scene.Load(*scenePath)
	if err != nil {
		return err
	}
	n := s.ClearTags(fs.Args())
	if err := s.Save(*scenePath); err != nil {
		return err
	}
	fmt.Fprintf(w, "cleared %d object(s)\n", n)
	return nil
}

func runList(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	scenePath := fs.String("scene", "", "TOML sidecar to read.")
	var f scene.Filter
	fs.StringVar(&f.Name, "name", "", "Only names matching this pattern.")
	fs.BoolVar(&f.Invert, "invert", false, "Invert the name match.")
	fs.BoolVar(&f.Invisible, "invisible", false, "Include invisible objects.")
	fs.BoolVar(&f.Mesh, "mesh", false, "Include mesh colliders.")
	fs.BoolVar(&f.Hull, "hull", false, "Include hull colliders.")
	fs.BoolVar(&f.Box, "box", false, "Include box colliders.")
	fs.BoolVar(&f.None, "none", false, "Include non-colliders.")
	all := fs.Bool("all", false, "List every object, tagged or not.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := scene.Load(*scenePath)
	if err != nil {
		return err
	}
	names := s.FilterObjects(f)
	if *all {
		names = s.ObjectNames()
	}
	for _, name := range names {
		obj, _ := s.Object(name)
		if obj.Metadata == nil {
			fmt.Fprintf(w, "%s\ttype=%s\n", name, obj.Type)
			continue
		}
		fmt.Fprintf(w, "%s\tcollision=%s\tvisible=%t\n", name, obj.Metadata.CollisionMode, obj.Metadata.Visible)
	}
	return nil
}

type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func runCollection(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("collection", flag.ContinueOnError)
	scenePath := fs.String("scene", "", "TOML sidecar to edit.")
	name := fs.String("name", "", "Collection to show or edit.")
	scaleMode := fs.String("scale-mode", "", "SCALE_40, SCALE_39, SCALE_52, SCALE_100, SCALE_1 or CUSTOM.")
	scale := fs.Float64("scale", metadata.DefaultScale, "Units per meter used with CUSTOM.")
	collision := fs.String("collision", "", "Collision mode: AUTO, MESH, HULL, BOX or NONE.")
	remove := fs.Int("remove-cdmaterial", -1, "Remove the cdmaterials entry at this index.")
	up := fs.Int("move-up", -1, "Move the cdmaterials entry at this index up.")
	down := fs.Int("move-down", -1, "Move the cdmaterials entry at this index down.")
	detach := fs.Bool("detach", false, "Remove the collection's metadata.")
	var add stringList
	fs.Var(&add, "add-cdmaterial", "Append a cdmaterials path (repeatable).")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return errors.New("-name is required")
	}
	s, err := scene.Load(*scenePath)
	if err != nil {
		return err
	}

	edited := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name != "scene" && f.Name != "name" {
			edited = true
		}
	})
	if !edited {
		meta, ok := s.Collection(*name)
		if !ok {
			return fmt.Errorf("%w: collection '%s'", core.ErrMetadataAbsent, *name)
		}
		printCollection(w, *name, meta)
		return nil
	}

	if *detach {
		s.DetachCollection(*name)
		fmt.Fprintf(w, "detached '%s'\n", *name)
		return s.Save(*scenePath)
	}

	meta := s.AttachCollection(*name)
	if *scaleMode != "" {
		if meta.ScaleMode, err = metadata.ParseScaleMode(*scaleMode); err != nil {
			return err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "scale" {
			meta.Scale = *scale
		}
	})
	if *collision != "" {
		if meta.CollisionMode, err = metadata.ParseCollisionMode(*collision); err != nil {
			return err
		}
	}
	if *remove >= 0 && !meta.RemoveCDMaterial(*remove) {
		return fmt.Errorf("no cdmaterials entry at index %d", *remove)
	}
	if *up >= 0 && !meta.MoveCDMaterial(*up, -1) {
		return fmt.Errorf("cannot move cdmaterials entry %d up", *up)
	}
	if *down >= 0 && !meta.MoveCDMaterial(*down, 1) {
		return fmt.Errorf("cannot move cdmaterials entry %d down", *down)
	}
	for _, p := range add {
		meta.AddCDMaterial(p)
	}
	if err := s.Save(*scenePath); err != nil {
		return err
	}
	printCollection(w, *name, meta)
	return nil
}

func printCollection(w io.Writer, name string, meta *metadata.CollectionMetadata) {
	fmt.Fprintf(w, "%s\tscale_mode=%s\tscale=%g\tcollision=%s\tcdmaterials=[%s]\n",
		name, meta.ScaleMode, meta.Scale, meta.CollisionMode, strings.Join(meta.CDMaterials, ", "))
}

// runGame edits the games list of the configuration file:
// game add|remove|use|list [-config path] [-name n] [-dir d].
func runGame(args []string, w io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: sourcery game add|remove|use|list [flags]")
	}
	action, args := args[0], args[1:]

	fs := flag.NewFlagSet("game", flag.ContinueOnError)
	configPath := fs.String("config", "sourcery.toml", "Configuration file to edit.")
	name := fs.String("name", "", "Name of the game.")
	dir := fs.String("dir", "", "Folder containing gameinfo.txt.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		return err
	}

	switch action {
	case "list":
		for _, g := range cfg.Games {
			active := ""
			if g.Name == cfg.ActiveGame {
				active = "\t(active)"
			}
			fmt.Fprintf(w, "%s\t%s%s\n", g.Name, g.GameDir, active)
		}
		return nil
	case "add":
		g := config.Game{Name: *name, GameDir: *dir}
		if err := g.Validate(); err != nil {
			core.LogWarn("%s", err)
		}
		if err := cfg.AddGame(g); err != nil {
			return err
		}
	case "remove":
		if !cfg.RemoveGame(*name) {
			return fmt.Errorf("%w: '%s'", core.ErrUnknownGame, *name)
		}
	case "use":
		cfg.ActiveGame = *name
		if _, err := cfg.Game(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown game action %q", action)
	}
	return cfg.Save(*configPath)
}
