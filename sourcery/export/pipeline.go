package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/qmuntal/gltf"
	"github.com/spaghettifunk/sourcery/sourcery/core"
	"github.com/spaghettifunk/sourcery/sourcery/extension"
	"golang.org/x/exp/slices"
)

type Format uint8

const (
	// Pick by output file extension
	FormatAuto Format = iota
	FormatGLTF
	FormatGLB
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "gltf":
		return FormatGLTF, nil
	case "glb":
		return FormatGLB, nil
	}
	return FormatAuto, fmt.Errorf("unknown output format %q", s)
}

type options struct {
	format        Format
	materialsRoot string
}

type Option func(*options)

func WithFormat(f Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithGameDir enables checking cdmaterials entries against
// <dir>/materials.
func WithGameDir(dir string) Option {
	return func(o *options) {
		o.materialsRoot = filepath.Join(dir, "materials")
	}
}

// Report summarises one pass over a document.
type Report struct {
	Collection bool
	Nodes      int
	ColorSlots int
}

type Exporter struct {
	hooks    *Hooks
	settings Settings
	opts     *options
}

func New(s Scene, settings Settings, opts ...Option) *Exporter {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return &Exporter{
		hooks:    NewHooks(s),
		settings: settings,
		opts:     o,
	}
}

// Process runs every hook over doc. Blocks left by an earlier pass are
// removed first so processing the same document twice gives the same result.
func (e *Exporter) Process(doc *gltf.Document) Report {
	strip(doc)
	e.hooks.reset()

	var r Report
	r.Collection = e.hooks.GatherCollection(e.settings, doc)
	if r.Collection {
		e.checkMaterials(doc)
	}
	for _, node := range doc.Nodes {
		if node == nil {
			continue
		}
		if e.hooks.GatherNode(node) {
			r.Nodes++
		}
		r.ColorSlots += e.hooks.RelabelColorAttributes(doc, node)
	}
	if r.Collection || r.Nodes > 0 {
		doc.ExtensionsUsed = append(doc.ExtensionsUsed, extension.Name)
	}
	return r
}

// Export reads in, processes it and writes the result to out.
func (e *Exporter) Export(in, out string) (Report, error) {
	doc, err := gltf.Open(in)
	if err != nil {
		return Report{}, fmt.Errorf("failed to open '%s': %w", in, err)
	}
	r := e.Process(doc)
	if err := e.save(doc, out); err != nil {
		return r, err
	}
	core.LogInfo("exported '%s' -> '%s' (collection: %t, nodes: %d, color slots: %d)", in, out, r.Collection, r.Nodes, r.ColorSlots)
	return r, nil
}

// save writes to a uniquely named sibling file first so a failed write
// never truncates out.
func (e *Exporter) save(doc *gltf.Document, out string) error {
	tmp := filepath.Join(filepath.Dir(out), fmt.Sprintf(".%s.%s.tmp", filepath.Base(out), uuid.NewString()))

	var err error
	if e.binary(out) {
		err = gltf.SaveBinary(doc, tmp)
	} else {
		err = gltf.Save(doc, tmp)
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write '%s': %w", out, err)
	}
	if err := os.Rename(tmp, out); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (e *Exporter) binary(out string) bool {
	switch e.opts.format {
	case FormatGLB:
		return true
	case FormatGLTF:
		return false
	}
	return strings.EqualFold(filepath.Ext(out), ".glb")
}

func (e *Exporter) checkMaterials(doc *gltf.Document) {
	if e.opts.materialsRoot == "" {
		return
	}
	payload, err := extension.FromExtension(doc.Extensions[extension.Name])
	if err != nil {
		return
	}
	for _, p := range payload.CDMaterials {
		dir := filepath.Join(e.opts.materialsRoot, filepath.FromSlash(p))
		if _, err := os.Stat(dir); err != nil {
			core.LogWarn("cdmaterials path '%s' not found under '%s'", p, e.opts.materialsRoot)
		}
	}
}

func strip(doc *gltf.Document) {
	delete(doc.Extensions, extension.Name)
	for _, node := range doc.Nodes {
		if node != nil {
			delete(node.Extensions, extension.Name)
		}
	}
	doc.ExtensionsUsed = slices.DeleteFunc(doc.ExtensionsUsed, func(s string) bool {
		return s == extension.Name
	})
}
