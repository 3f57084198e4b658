package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/spaghettifunk/sourcery/sourcery/core"
	"github.com/spaghettifunk/sourcery/sourcery/extension"
	"github.com/spaghettifunk/sourcery/sourcery/metadata"
)

// Scene is the metadata lookup the hooks read from.
type Scene interface {
	Collection(name string) (*metadata.CollectionMetadata, bool)
	ObjectMetadata(name string) (*metadata.ObjectMetadata, bool)
	ColorAttributes(name string) []string
}

// Settings describes the export pass in progress.
type Settings struct {
	// Identifier of the collection being exported.
	Collection string
}

type Hooks struct {
	scene Scene
	// accessor index -> name given during the current pass
	labels map[int]string
}

func NewHooks(s Scene) *Hooks {
	return &Hooks{scene: s, labels: make(map[int]string)}
}

// reset forgets the accessor names given by an earlier pass.
func (h *Hooks) reset() {
	clear(h.labels)
}

// GatherCollection attaches the collection payload to the document root.
// Missing metadata is logged and skipped.
func (h *Hooks) GatherCollection(settings Settings, doc *gltf.Document) bool {
	if settings.Collection == "" {
		core.LogWarn("no collection set for this export, skipping %s", extension.Name)
		return false
	}
	meta, ok := h.scene.Collection(settings.Collection)
	if !ok || meta == nil {
		core.LogWarn("collection '%s' has no metadata, skipping %s", settings.Collection, extension.Name)
		return false
	}
	payload := extension.SerializeCollection(meta)
	if payload.IsEmpty() {
		core.LogWarn("collection '%s' produced an empty payload, skipping %s", settings.Collection, extension.Name)
		return false
	}
	if doc.Extensions == nil {
		doc.Extensions = make(gltf.Extensions)
	}
	doc.Extensions[extension.Name] = &payload
	return true
}

// GatherNode attaches the object payload to node. Nodes without metadata
// are the common case and are skipped silently.
func (h *Hooks) GatherNode(node *gltf.Node) bool {
	meta, ok := h.scene.ObjectMetadata(node.Name)
	if !ok || meta == nil {
		return false
	}
	payload := extension.SerializeObject(meta)
	if payload.IsEmpty() {
		return false
	}
	if node.Extensions == nil {
		node.Extensions = make(gltf.Extensions)
	}
	node.Extensions[extension.Name] = &payload
	return true
}

// RelabelColorAttributes names the accessors behind the COLOR_n attributes
// of node's mesh after the object's source color attributes. Exporters may
// insert an extra leading color channel; when a primitive exports more
// COLOR_n slots than the object has attributes, slot n maps to source n-1.
// Accessors shared by objects with different attribute names keep the last
// name and a warning is logged. It returns the number of accessors renamed.
func (h *Hooks) RelabelColorAttributes(doc *gltf.Document, node *gltf.Node) int {
	if node.Mesh == nil || int(*node.Mesh) >= len(doc.Meshes) {
		return 0
	}
	names := h.scene.ColorAttributes(node.Name)
	if len(names) == 0 {
		return 0
	}

	renamed := 0
	mesh := doc.Meshes[*node.Mesh]
	for _, prim := range mesh.Primitives {
		slots := colorSlots(prim)
		offset := 0
		if len(slots) > len(names) {
			offset = 1
		}
		for _, slot := range slots {
			src := slot - offset
			if src < 0 || src >= len(names) {
				continue
			}
			idx := prim.Attributes[colorKey(slot)]
			if int(idx) >= len(doc.Accessors) || doc.Accessors[idx] == nil {
				continue
			}
			if prev, ok := h.labels[int(idx)]; ok && prev != names[src] {
				core.LogWarn("accessor %d is shared: '%s' relabels %s from '%s' to '%s'", idx, node.Name, colorKey(slot), prev, names[src])
			}
			h.labels[int(idx)] = names[src]
			doc.Accessors[idx].Name = names[src]
			renamed++
		}
	}
	return renamed
}

func colorKey(n int) string {
	return fmt.Sprintf("COLOR_%d", n)
}

// colorSlots returns the n of every COLOR_n attribute, ascending.
func colorSlots(prim *gltf.Primitive) []int {
	var slots []int
	for n := 0; ; n++ {
		if _, ok := prim.Attributes[colorKey(n)]; !ok {
			break
		}
		slots = append(slots, n)
	}
	for key := range prim.Attributes {
		if !strings.HasPrefix(key, "COLOR_") {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(key, "COLOR_")); err == nil && n > len(slots) {
			core.LogWarn("attribute %s is not contiguous with earlier color slots, ignored", key)
		}
	}
	return slots
}
