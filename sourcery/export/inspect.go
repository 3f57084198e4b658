package export

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/spaghettifunk/sourcery/sourcery/extension"
)

// Inspection lists the SRC_sourcery blocks found in a document. Nodes are
// keyed by name; unnamed nodes and repeated names carry a "#index" suffix.
type Inspection struct {
	Collection *extension.Payload
	Nodes      map[string]*extension.Payload
}

func Inspect(doc *gltf.Document) (*Inspection, error) {
	in := &Inspection{Nodes: make(map[string]*extension.Payload)}
	if v, ok := doc.Extensions[extension.Name]; ok {
		p, err := extension.FromExtension(v)
		if err != nil {
			return nil, fmt.Errorf("document extension: %w", err)
		}
		in.Collection = p
	}
	for i, node := range doc.Nodes {
		if node == nil {
			continue
		}
		v, ok := node.Extensions[extension.Name]
		if !ok {
			continue
		}
		p, err := extension.FromExtension(v)
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, node.Name, err)
		}
		name := node.Name
		if _, dup := in.Nodes[name]; dup || name == "" {
			name = fmt.Sprintf("%s#%d", node.Name, i)
		}
		in.Nodes[name] = p
	}
	return in, nil
}

func InspectFile(path string) (*Inspection, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open '%s': %w", path, err)
	}
	return Inspect(doc)
}
