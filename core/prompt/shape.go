package prompt

import (
	"encoding/json"
	"slices"
)

// Tone steers Grok enhancement.
type Tone string

const (
	ToneStandard  Tone = "Standard"
	ToneFun       Tone = "Fun Mode"
	ToneTechnical Tone = "Technical"
)

// ParseTone validates a tone name. The empty string is Standard.
func ParseTone(value string) (Tone, bool) {
	switch Tone(value) {
	case "", ToneStandard:
		return ToneStandard, true
	case ToneFun, ToneTechnical:
		return Tone(value), true
	}
	return "", false
}

// Shape is the prompt record of one tool. The set of implementations is
// closed: VideoShape, ConversationalShape, ImageShape and DiffusionShape.
type Shape interface {
	MainText() string
	isShape()
}

// VideoShape is the record of sora and veo.
type VideoShape struct {
	Main      string   `json:"main"`
	Modifiers []string `json:"modifiers"`
}

// ConversationalShape is the record of grok. An empty Tone reads as Standard.
type ConversationalShape struct {
	Main string `json:"main"`
	Tone Tone   `json:"tone,omitempty"`
}

// ImageShape is the record of midjourney.
type ImageShape struct {
	Main      string   `json:"main"`
	Modifiers []string `json:"modifiers"`
}

// DiffusionShape is the record of comfy and a1111. Comfy carries Nodes,
// a1111 carries Params; a nil slice means the field is absent.
type DiffusionShape struct {
	Main      string      `json:"main"`
	Negative  string      `json:"negative"`
	Modifiers []string    `json:"modifiers"`
	Nodes     []GraphNode `json:"nodes,omitempty"`
	Params    []Param     `json:"params,omitempty"`
}

// NodeField is one named input of a graph node.
type NodeField struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	Value any    `json:"value"`
}

// GraphNode is one unit of a ComfyUI workflow.
type GraphNode struct {
	ID          int         `json:"id"`
	TemplateKey string      `json:"templateKey"`
	Title       string      `json:"title"`
	Type        string      `json:"type"`
	Fields      []NodeField `json:"fields"`
}

// Param is one a1111 generation parameter. Params keep insertion order.
type Param struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func (s VideoShape) MainText() string          { return s.Main }
func (s ConversationalShape) MainText() string { return s.Main }
func (s ImageShape) MainText() string          { return s.Main }
func (s DiffusionShape) MainText() string      { return s.Main }

func (VideoShape) isShape()          {}
func (ConversationalShape) isShape() {}
func (ImageShape) isShape()          {}
func (DiffusionShape) isShape()      {}

// EffectiveTone returns the tone, reading empty as Standard.
func (s ConversationalShape) EffectiveTone() Tone {
	if s.Tone == "" {
		return ToneStandard
	}
	return s.Tone
}

// MarshalJSON distinguishes an empty node list from an absent one.
func (s DiffusionShape) MarshalJSON() ([]byte, error) {
	type wire struct {
		Main      string       `json:"main"`
		Negative  string       `json:"negative"`
		Modifiers []string     `json:"modifiers"`
		Nodes     *[]GraphNode `json:"nodes,omitempty"`
		Params    *[]Param     `json:"params,omitempty"`
	}
	w := wire{Main: s.Main, Negative: s.Negative, Modifiers: s.Modifiers}
	if w.Modifiers == nil {
		w.Modifiers = []string{}
	}
	if s.Nodes != nil {
		w.Nodes = &s.Nodes
	}
	if s.Params != nil {
		w.Params = &s.Params
	}
	return json.Marshal(w)
}

// Modifiers returns the shape's modifier list, or nil for shapes without one.
func Modifiers(shape Shape) []string {
	switch s := shape.(type) {
	case VideoShape:
		return s.Modifiers
	case ImageShape:
		return s.Modifiers
	case DiffusionShape:
		return s.Modifiers
	}
	return nil
}

// HasModifiers reports whether the shape carries a modifier list.
func HasModifiers(shape Shape) bool {
	switch shape.(type) {
	case VideoShape, ImageShape, DiffusionShape:
		return true
	}
	return false
}

// withModifiers returns a copy of shape with its modifier list replaced.
func withModifiers(shape Shape, modifiers []string) Shape {
	switch s := shape.(type) {
	case VideoShape:
		s.Modifiers = modifiers
		return s
	case ImageShape:
		s.Modifiers = modifiers
		return s
	case DiffusionShape:
		s.Modifiers = modifiers
		return s
	}
	return shape
}

// Clone returns a deep copy of shape. Field values of nodes and params are
// copied by assignment.
func Clone(shape Shape) Shape {
	switch s := shape.(type) {
	case VideoShape:
		s.Modifiers = cloneStrings(s.Modifiers)
		return s
	case ConversationalShape:
		return s
	case ImageShape:
		s.Modifiers = cloneStrings(s.Modifiers)
		return s
	case DiffusionShape:
		s.Modifiers = cloneStrings(s.Modifiers)
		s.Nodes = cloneNodes(s.Nodes)
		s.Params = slices.Clone(s.Params)
		return s
	}
	return shape
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append(make([]string, 0, len(values)), values...)
}

func cloneNodes(nodes []GraphNode) []GraphNode {
	if nodes == nil {
		return nil
	}
	out := make([]GraphNode, len(nodes))
	for i, node := range nodes {
		node.Fields = slices.Clone(node.Fields)
		out[i] = node
	}
	return out
}
