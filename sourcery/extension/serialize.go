package extension

import (
	"fmt"

	"github.com/spaghettifunk/sourcery/sourcery/core"
	"github.com/spaghettifunk/sourcery/sourcery/metadata"
	"golang.org/x/exp/slices"
)

// SerializeCollection builds the document-level payload. $scale is always
// present for known scale modes; collision and material paths only when
// they differ from the defaults.
func SerializeCollection(meta *metadata.CollectionMetadata) Payload {
	var p Payload
	if scale, ok := meta.ResolveScale(); ok {
		p.Scale = &scale
	} else {
		core.LogDebug("collection scale mode %s has no value, $scale omitted", meta.ScaleMode)
	}
	if meta.CollisionMode != metadata.CollisionAuto {
		p.Collision = meta.CollisionMode.Lower()
	}
	if len(meta.CDMaterials) > 0 {
		p.CDMaterials = slices.Clone(meta.CDMaterials)
	}
	return p
}

// SerializeObject builds the per-node payload. The result is empty when
// meta.IsEmpty().
func SerializeObject(meta *metadata.ObjectMetadata) Payload {
	var p Payload
	if meta.CollisionMode != metadata.CollisionAuto {
		p.Collision = meta.CollisionMode.Lower()
	}
	if !meta.Visible {
		hidden := false
		p.Visible = &hidden
	}
	return p
}

var tableModes = []metadata.ScaleMode{
	metadata.Scale40, metadata.Scale39, metadata.Scale52, metadata.Scale100, metadata.Scale1,
}

// ApplyCollection writes the keys present in p onto meta. A $scale that
// matches a table constant selects that mode, anything else becomes a
// custom scale.
func ApplyCollection(p *Payload, meta *metadata.CollectionMetadata) error {
	if p.Scale != nil {
		meta.ScaleMode = metadata.ScaleCustom
		for _, mode := range tableModes {
			if v, _ := mode.UnitsPerMeter(); v == *p.Scale {
				meta.ScaleMode = mode
				break
			}
		}
		if meta.ScaleMode == metadata.ScaleCustom {
			meta.Scale = *p.Scale
		}
	}
	if p.Collision != "" {
		mode, err := metadata.ParseCollisionMode(p.Collision)
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrInvalidPayload, err)
		}
		meta.CollisionMode = mode
	}
	if len(p.CDMaterials) > 0 {
		meta.CDMaterials = slices.Clone(p.CDMaterials)
	}
	return nil
}

func ApplyObject(p *Payload, meta *metadata.ObjectMetadata) error {
	if p.Collision != "" {
		mode, err := metadata.ParseCollisionMode(p.Collision)
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrInvalidPayload, err)
		}
		meta.CollisionMode = mode
	}
	if p.Visible != nil {
		meta.Visible = *p.Visible
	}
	return nil
}
