package extension

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/spaghettifunk/sourcery/sourcery/core"
)

// Name is the key of the extension block in document and node extension maps.
const Name = "SRC_sourcery"

const (
	KeyScale       = "$scale"
	KeyCollision   = "$collision"
	KeyCDMaterials = "$cdmaterials"
	KeyVisible     = "$visible"
)

func init() {
	gltf.RegisterExtension(Name, Unmarshal)
}

// Payload is the content of a SRC_sourcery block. Absent fields mean
// "default"; a zero Payload is empty and must not be attached.
type Payload struct {
	Scale       *float64 `json:"$scale,omitempty"`
	Collision   string   `json:"$collision,omitempty"`
	CDMaterials []string `json:"$cdmaterials,omitempty"`
	Visible     *bool    `json:"$visible,omitempty"`
}

func (p *Payload) IsEmpty() bool {
	return p.Scale == nil && p.Collision == "" && len(p.CDMaterials) == 0 && p.Visible == nil
}

// Unmarshal decodes a raw extension block. It is registered with the glTF
// decoder so documents read back carry *Payload values.
func Unmarshal(data []byte) (interface{}, error) {
	p := new(Payload)
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidPayload, err)
	}
	return p, nil
}

// FromExtension converts whatever an extensions map holds under Name into a
// Payload. Documents decoded before registration hold json.RawMessage.
func FromExtension(v interface{}) (*Payload, error) {
	switch ext := v.(type) {
	case nil:
		return nil, core.ErrMetadataAbsent
	case *Payload:
		return ext, nil
	case Payload:
		return &ext, nil
	case json.RawMessage:
		return decode(ext)
	case []byte:
		return decode(ext)
	default:
		data, err := json.Marshal(ext)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrInvalidPayload, err)
		}
		return decode(data)
	}
}

func decode(data []byte) (*Payload, error) {
	v, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return v.(*Payload), nil
}
