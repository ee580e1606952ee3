// Package protocol defines the messages exchanged between a render context
// and its control panel, and their JSON codec.
package protocol

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/san-kum/confetti/internal/config"
)

var (
	ErrMalformed   = errors.New("protocol: malformed message")
	ErrUnknownType = errors.New("protocol: unknown message type")
)

type Type string

// Message types.
const (
	TypeShow          Type = "show"
	TypeUpdate        Type = "update"
	TypeAutofire      Type = "autofire"
	TypeDefaults      Type = "defaults"
	TypeConfiguration Type = "configuration"
	TypePanelSize     Type = "panel_size"
)

var knownTypes = map[Type]struct{}{
	TypeShow:          {},
	TypeUpdate:        {},
	TypeAutofire:      {},
	TypeDefaults:      {},
	TypeConfiguration: {},
	TypePanelSize:     {},
}

func (t Type) Known() bool {
	_, ok := knownTypes[t]
	return ok
}

// Message is the envelope of every sync message. Which fields are set
// depends on Type.
type Message struct {
	Type     Type            `json:"type"`
	Path     string          `json:"path,omitempty"`
	Value    any             `json:"value,omitempty"`
	Snapshot config.Snapshot `json:"snapshot,omitempty"`
	Width    float64         `json:"width,omitempty"`
	Height   float64         `json:"height,omitempty"`
}

// MarshalJSON always writes the snapshot of defaults and configuration
// messages, an empty one included.
func (m Message) MarshalJSON() ([]byte, error) {
	type plain Message
	if m.Type != TypeDefaults && m.Type != TypeConfiguration {
		return json.Marshal(plain(m))
	}
	snap := m.Snapshot
	if snap == nil {
		snap = config.Snapshot{}
	}
	return json.Marshal(struct {
		plain
		Snapshot config.Snapshot `json:"snapshot"`
	}{plain(m), snap})
}

func Show() Message     { return Message{Type: TypeShow} }
func Autofire() Message { return Message{Type: TypeAutofire} }

func Update(path string, value any) Message {
	return Message{Type: TypeUpdate, Path: path, Value: value}
}

func Defaults(snap config.Snapshot) Message {
	return Message{Type: TypeDefaults, Snapshot: snap}
}

func Configuration(snap config.Snapshot) Message {
	return Message{Type: TypeConfiguration, Snapshot: snap}
}

func PanelSize(w, h float64) Message {
	return Message{Type: TypePanelSize, Width: w, Height: h}
}

//go:embed message.schema.json
var schemaText string

var schema = jsonschema.MustCompileString("message.schema.json", schemaText)

// Encode marshals m. It refuses message types it does not know.
func Encode(m Message) ([]byte, error) {
	if !m.Type.Known() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", m.Type, err)
	}
	return b, nil
}

// Decode parses and validates raw. Anything that does not satisfy the message
// schema is rejected as a whole with ErrMalformed; an unrecognized type also
// matches ErrUnknownType.
func Decode(raw []byte) (Message, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if obj, ok := doc.(map[string]any); ok {
		if t, ok := obj["type"].(string); ok && !Type(t).Known() {
			return Message{}, fmt.Errorf("%w: %w: %q", ErrMalformed, ErrUnknownType, t)
		}
	}
	if err := schema.Validate(doc); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return m, nil
}
