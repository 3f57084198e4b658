package metadata

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/sourcery/sourcery/core"
)

// ScaleMode selects a fixed units-per-meter constant, or ScaleCustom.
type ScaleMode uint8

const (
	// 40 hammer units per meter
	Scale40 ScaleMode = iota
	// 1 hammer unit = 1 inch
	Scale39
	// 1 hammer unit = 0.75 inch
	Scale52
	Scale100
	Scale1
	// Use CollectionMetadata.Scale verbatim
	ScaleCustom
)

var scaleModeNames = [...]string{
	Scale40:     "SCALE_40",
	Scale39:     "SCALE_39",
	Scale52:     "SCALE_52",
	Scale100:    "SCALE_100",
	Scale1:      "SCALE_1",
	ScaleCustom: "CUSTOM",
}

var scaleTable = map[ScaleMode]float64{
	Scale40:  40.0,
	Scale39:  100 * (12 / 30.48),
	Scale52:  100 * (16 / 30.48),
	Scale100: 100.0,
	Scale1:   1.0,
}

// UnitsPerMeter returns the table constant for m. ScaleCustom and unknown
// modes have no table entry.
func (m ScaleMode) UnitsPerMeter() (float64, bool) {
	v, ok := scaleTable[m]
	return v, ok
}

func (m ScaleMode) String() string {
	if int(m) < len(scaleModeNames) {
		return scaleModeNames[m]
	}
	return fmt.Sprintf("ScaleMode(%d)", m)
}

func (m ScaleMode) MarshalText() ([]byte, error) {
	if int(m) >= len(scaleModeNames) {
		return nil, fmt.Errorf("%w: %d", core.ErrUnknownScaleMode, m)
	}
	return []byte(m.String()), nil
}

func (m *ScaleMode) UnmarshalText(text []byte) error {
	v, err := ParseScaleMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func ParseScaleMode(s string) (ScaleMode, error) {
	for i, name := range scaleModeNames {
		if strings.EqualFold(name, s) {
			return ScaleMode(i), nil
		}
	}
	return Scale40, fmt.Errorf("%w: %q", core.ErrUnknownScaleMode, s)
}

// CollisionMode is the collision generation strategy. CollisionAuto means
// no override.
type CollisionMode uint8

const (
	CollisionAuto CollisionMode = iota
	CollisionMesh
	CollisionHull
	CollisionBox
	CollisionNone
)

var collisionModeNames = [...]string{
	CollisionAuto: "AUTO",
	CollisionMesh: "MESH",
	CollisionHull: "HULL",
	CollisionBox:  "BOX",
	CollisionNone: "NONE",
}

func (m CollisionMode) String() string {
	if int(m) < len(collisionModeNames) {
		return collisionModeNames[m]
	}
	return fmt.Sprintf("CollisionMode(%d)", m)
}

// Lower is the form written to extension payloads.
func (m CollisionMode) Lower() string {
	return strings.ToLower(m.String())
}

func (m CollisionMode) MarshalText() ([]byte, error) {
	if int(m) >= len(collisionModeNames) {
		return nil, fmt.Errorf("%w: %d", core.ErrUnknownCollisionMode, m)
	}
	return []byte(m.String()), nil
}

func (m *CollisionMode) UnmarshalText(text []byte) error {
	v, err := ParseCollisionMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseCollisionMode is case-insensitive, so it accepts both the
// sidecar form ("HULL") and the payload form ("hull").
func ParseCollisionMode(s string) (CollisionMode, error) {
	for i, name := range collisionModeNames {
		if strings.EqualFold(name, s) {
			return CollisionMode(i), nil
		}
	}
	return CollisionAuto, fmt.Errorf("%w: %q", core.ErrUnknownCollisionMode, s)
}
