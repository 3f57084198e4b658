package metadata

import (
	"golang.org/x/exp/slices"
)

const DefaultScale = 40.0

// CollectionMetadata is attached to an exported root collection.
type CollectionMetadata struct {
	ScaleMode     ScaleMode     `toml:"scale_mode"`
	Scale         float64       `toml:"scale"`
	CollisionMode CollisionMode `toml:"collision_mode"`
	CDMaterials   []string      `toml:"cdmaterials"`
}

func NewCollectionMetadata() *CollectionMetadata {
	return &CollectionMetadata{
		ScaleMode:     Scale40,
		Scale:         DefaultScale,
		CollisionMode: CollisionAuto,
	}
}

// ResolveScale returns the units-per-meter value for the record. Custom
// scales are returned as-is, zero and negative values included.
func (c *CollectionMetadata) ResolveScale() (float64, bool) {
	if c.ScaleMode == ScaleCustom {
		return c.Scale, true
	}
	return c.ScaleMode.UnitsPerMeter()
}

func (c *CollectionMetadata) AddCDMaterial(path string) {
	c.CDMaterials = append(c.CDMaterials, path)
}

func (c *CollectionMetadata) RemoveCDMaterial(index int) bool {
	if index < 0 || index >= len(c.CDMaterials) {
		return false
	}
	c.CDMaterials = slices.Delete(c.CDMaterials, index, index+1)
	return true
}

// MoveCDMaterial swaps the entry at index with its neighbour in direction
// (-1 up, +1 down). Out of range moves are ignored.
func (c *CollectionMetadata) MoveCDMaterial(index, direction int) bool {
	to := index + direction
	if index < 0 || index >= len(c.CDMaterials) || to < 0 || to >= len(c.CDMaterials) {
		return false
	}
	c.CDMaterials[index], c.CDMaterials[to] = c.CDMaterials[to], c.CDMaterials[index]
	return true
}

// ObjectMetadata is attached to a single mesh object.
type ObjectMetadata struct {
	Visible       bool          `toml:"visible"`
	CollisionMode CollisionMode `toml:"collision_mode"`
}

func NewObjectMetadata() *ObjectMetadata {
	return &ObjectMetadata{
		Visible:       true,
		CollisionMode: CollisionAuto,
	}
}

// IsEmpty reports whether the record carries no override at all.
func (o *ObjectMetadata) IsEmpty() bool {
	return o.Visible && o.CollisionMode == CollisionAuto
}

func (o *ObjectMetadata) Reset() {
	o.Visible = true
	o.CollisionMode = CollisionAuto
}

// Tags is a tagging request applied to one or more objects.
type Tags struct {
	CollisionMode CollisionMode
	Visible       bool
}

// Tag overwrites only the fields of t that differ from the defaults, so
// tagging an object as invisible keeps an earlier collision override.
func (o *ObjectMetadata) Tag(t Tags) {
	if t.CollisionMode != CollisionAuto {
		o.CollisionMode = t.CollisionMode
	}
	if !t.Visible {
		o.Visible = false
	}
}
