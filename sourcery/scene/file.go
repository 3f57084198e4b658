package scene

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/sourcery/sourcery/core"
	"github.com/spaghettifunk/sourcery/sourcery/metadata"
)

// sidecar is the on-disk TOML layout. Missing keys keep their defaults.
type sidecar struct {
	Collections map[string]sidecarCollection `toml:"collections,omitempty"`
	Objects     map[string]sidecarObject     `toml:"objects,omitempty"`
}

type sidecarCollection struct {
	ScaleMode     *metadata.ScaleMode     `toml:"scale_mode,omitempty"`
	Scale         *float64                `toml:"scale,omitempty"`
	CollisionMode *metadata.CollisionMode `toml:"collision_mode,omitempty"`
	CDMaterials   []string                `toml:"cdmaterials,omitempty"`
}

type sidecarObject struct {
	Type            ObjectType              `toml:"type,omitempty"`
	Visible         *bool                   `toml:"visible,omitempty"`
	CollisionMode   *metadata.CollisionMode `toml:"collision_mode,omitempty"`
	ColorAttributes []string                `toml:"color_attributes,omitempty"`
}

func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene metadata '%s': %w", path, err)
	}
	core.LogDebug("loaded %d collection(s) and %d object(s) from '%s'", len(s.collections), len(s.objects), path)
	return s, nil
}

func Decode(r io.Reader) (*Store, error) {
	var sc sidecar
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		return nil, err
	}

	s := NewStore()
	for name, c := range sc.Collections {
		meta := s.AttachCollection(name)
		if c.ScaleMode != nil {
			meta.ScaleMode = *c.ScaleMode
		}
		if c.Scale != nil {
			if math.IsInf(*c.Scale, 0) || math.IsNaN(*c.Scale) {
				return nil, fmt.Errorf("collection '%s': scale must be finite, got %v", name, *c.Scale)
			}
			meta.Scale = *c.Scale
		}
		if c.CollisionMode != nil {
			meta.CollisionMode = *c.CollisionMode
		}
		meta.CDMaterials = c.CDMaterials
	}
	for name, o := range sc.Objects {
		typ := o.Type
		if typ == "" {
			typ = ObjectTypeMesh
		}
		obj := s.AddObject(name, typ, o.ColorAttributes...)
		if !obj.CanHaveData() {
			if o.Visible != nil || o.CollisionMode != nil {
				core.LogWarn("object '%s' is a %s and cannot carry metadata, tags ignored", name, typ)
			}
			continue
		}
		if o.Visible != nil {
			obj.Metadata.Visible = *o.Visible
		}
		if o.CollisionMode != nil {
			obj.Metadata.CollisionMode = *o.CollisionMode
		}
	}
	return s, nil
}

func (s *Store) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to save scene metadata '%s': %w", path, err)
	}
	return f.Close()
}

// Encode writes only non-default values.
func (s *Store) Encode(w io.Writer) error {
	s.mutex.RLock()
	sc := sidecar{
		Collections: make(map[string]sidecarCollection, len(s.collections)),
		Objects:     make(map[string]sidecarObject, len(s.objects)),
	}
	for name, c := range s.collections {
		out := sidecarCollection{CDMaterials: c.CDMaterials}
		mode := c.ScaleMode
		out.ScaleMode = &mode
		if c.ScaleMode == metadata.ScaleCustom || c.Scale != metadata.DefaultScale {
			scale := c.Scale
			out.Scale = &scale
		}
		if c.CollisionMode != metadata.CollisionAuto {
			collision := c.CollisionMode
			out.CollisionMode = &collision
		}
		sc.Collections[name] = out
	}
	for name, o := range s.objects {
		out := sidecarObject{Type: o.Type, ColorAttributes: o.ColorAttributes}
		if o.Metadata != nil {
			if !o.Metadata.Visible {
				visible := false
				out.Visible = &visible
			}
			if o.Metadata.CollisionMode != metadata.CollisionAuto {
				collision := o.Metadata.CollisionMode
				out.CollisionMode = &collision
			}
		}
		sc.Objects[name] = out
	}
	s.mutex.RUnlock()

	return toml.NewEncoder(w).Encode(sc)
}
