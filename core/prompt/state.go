package prompt

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/leofalp/promptcraft/catalog"
)

// Field names one editable field of a Shape.
type Field string

const (
	FieldMain      Field = "main"
	FieldNegative  Field = "negative"
	FieldModifiers Field = "modifiers"
	FieldTone      Field = "tone"
	FieldNodes     Field = "nodes"
	FieldParams    Field = "params"
)

// State maps every tool to its Shape. The zero value is not usable; start
// from Initial.
type State struct {
	shapes     map[ToolID]Shape
	nextNodeID int
}

// Initial returns the state of a fresh session: all prompts empty, grok on
// the Standard tone, comfy with a single KSampler node and a1111 with the
// default generation parameters.
func Initial() State {
	s := State{
		shapes: map[ToolID]Shape{
			Sora:       VideoShape{Modifiers: []string{}},
			Veo:        VideoShape{Modifiers: []string{}},
			Grok:       ConversationalShape{Tone: ToneStandard},
			Midjourney: ImageShape{Modifiers: []string{}},
			Comfy:      DiffusionShape{Modifiers: []string{}, Nodes: []GraphNode{}},
			A1111: DiffusionShape{
				Modifiers: []string{},
				Params:    DefaultParams(),
			},
		},
		nextNodeID: 1,
	}

	if template, ok := catalog.Default().Template("KSampler"); ok {
		comfy := s.shapes[Comfy].(DiffusionShape)
		comfy.Nodes = []GraphNode{nodeFromTemplate(s.nextNodeID, template)}
		s.shapes[Comfy] = comfy
		s.nextNodeID++
	}
	return s
}

// DefaultParams returns the a1111 parameters of a fresh session.
func DefaultParams() []Param {
	return []Param{
		{Name: "sampler", Value: "DPM++ 2M Karras"},
		{Name: "steps", Value: 20},
		{Name: "width", Value: 512},
		{Name: "height", Value: 512},
		{Name: "cfg", Value: 7.0},
		{Name: "seed", Value: -1},
		{Name: "batch_size", Value: 1},
	}
}

// Shape returns a copy of the tool's shape.
func (s State) Shape(tool ToolID) (Shape, bool) {
	shape, ok := s.shapes[tool]
	if !ok {
		return nil, false
	}
	return Clone(shape), true
}

// NextNodeID returns the id the next added node will receive.
func (s State) NextNodeID() int {
	return s.nextNodeID
}

// MarshalJSON encodes the state as an object keyed by tool.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.shapes)
}

// with returns a copy of s with tool's shape replaced. The map is copied; the
// shapes themselves are values whose slices callers must not share.
func (s State) with(tool ToolID, shape Shape) State {
	next := State{shapes: maps.Clone(s.shapes), nextNodeID: s.nextNodeID}
	next.shapes[tool] = shape
	return next
}

func (s State) lookup(tool ToolID) (Shape, error) {
	shape, ok := s.shapes[tool]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, tool)
	}
	return shape, nil
}

// Update replaces exactly one field of tool's shape. Valid fields depend on
// the shape: main everywhere, modifiers on every shape except grok, tone on
// grok, negative on comfy and a1111, nodes on comfy and params on a1111.
// Values are string for main, negative and tone, []string for modifiers,
// []GraphNode for nodes and []Param for params.
func (s State) Update(tool ToolID, field Field, value any) (State, error) {
	current, err := s.lookup(tool)
	if err != nil {
		return s, err
	}

	invalid := func() (State, error) {
		return s, fmt.Errorf("%w: %s on %s", ErrInvalidField, field, tool)
	}
	badValue := func() (State, error) {
		return s, fmt.Errorf("%w: %s expects %s, got %T", ErrInvalidValue, field, fieldType(field), value)
	}

	nextNodeID := s.nextNodeID
	var updated Shape

	switch field {
	case FieldMain:
		text, ok := value.(string)
		if !ok {
			return badValue()
		}
		updated = setMain(current, text)

	case FieldModifiers:
		modifiers, ok := value.([]string)
		if !ok {
			return badValue()
		}
		if !HasModifiers(current) {
			return invalid()
		}
		updated = withModifiers(current, cloneStrings(modifiers))

	case FieldTone:
		shape, isGrok := current.(ConversationalShape)
		if !isGrok {
			return invalid()
		}
		text, ok := value.(string)
		if !ok {
			return badValue()
		}
		tone, ok := ParseTone(text)
		if !ok {
			return s, fmt.Errorf("%w: unknown tone %q", ErrInvalidValue, text)
		}
		shape.Tone = tone
		updated = shape

	case FieldNegative:
		shape, isDiffusion := current.(DiffusionShape)
		if !isDiffusion {
			return invalid()
		}
		text, ok := value.(string)
		if !ok {
			return badValue()
		}
		shape.Negative = text
		updated = shape

	case FieldNodes:
		shape, isDiffusion := current.(DiffusionShape)
		if !isDiffusion || tool != Comfy {
			return invalid()
		}
		nodes, ok := value.([]GraphNode)
		if !ok {
			return badValue()
		}
		shape.Nodes = cloneNodes(nodes)
		if shape.Nodes == nil {
			shape.Nodes = []GraphNode{}
		}
		for _, node := range nodes {
			nextNodeID = max(nextNodeID, node.ID+1)
		}
		updated = shape

	case FieldParams:
		shape, isDiffusion := current.(DiffusionShape)
		if !isDiffusion || tool != A1111 {
			return invalid()
		}
		params, ok := value.([]Param)
		if !ok {
			return badValue()
		}
		shape.Params = slices.Clone(params)
		updated = shape

	default:
		return invalid()
	}

	next := s.with(tool, updated)
	next.nextNodeID = nextNodeID
	return next, nil
}

func fieldType(field Field) string {
	switch field {
	case FieldModifiers:
		return "[]string"
	case FieldNodes:
		return "[]GraphNode"
	case FieldParams:
		return "[]Param"
	}
	return "string"
}

func setMain(shape Shape, text string) Shape {
	switch s := shape.(type) {
	case VideoShape:
		s.Main = text
		return s
	case ConversationalShape:
		s.Main = text
		return s
	case ImageShape:
		s.Main = text
		return s
	case DiffusionShape:
		s.Main = text
		return s
	}
	return shape
}

// Clear resets tool's main text, negative text and modifiers. Comfy also
// loses its nodes (an empty list remains). Every other tool-specific field is
// dropped rather than reset: a1111 params become absent and the grok tone
// becomes empty, which reads as Standard. Unknown tools leave s unchanged.
func (s State) Clear(tool ToolID) State {
	var cleared Shape
	switch tool.Family() {
	case FamilyVideo:
		cleared = VideoShape{Modifiers: []string{}}
	case FamilyConversational:
		cleared = ConversationalShape{}
	case FamilyImage:
		cleared = ImageShape{Modifiers: []string{}}
	case FamilyDiffusion:
		shape := DiffusionShape{Modifiers: []string{}}
		if tool == Comfy {
			shape.Nodes = []GraphNode{}
		}
		cleared = shape
	default:
		return s
	}
	return s.with(tool, cleared)
}

// AddModifier appends tag to tool's modifiers unless it is already present.
func (s State) AddModifier(tool ToolID, tag string) (State, error) {
	current, err := s.modifierShape(tool)
	if err != nil {
		return s, err
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return s, fmt.Errorf("%w: empty modifier", ErrInvalidValue)
	}

	modifiers := Modifiers(current)
	if slices.Contains(modifiers, tag) {
		return s, nil
	}
	return s.with(tool, withModifiers(current, append(cloneStrings(modifiers), tag))), nil
}

// DeleteEnhancer removes every occurrence of tag from tool's modifiers.
func (s State) DeleteEnhancer(tool ToolID, tag string) (State, error) {
	current, err := s.modifierShape(tool)
	if err != nil {
		return s, err
	}

	modifiers := Modifiers(current)
	if !slices.Contains(modifiers, tag) {
		return s, fmt.Errorf("%w: %q", ErrNotFound, tag)
	}
	kept := slices.DeleteFunc(cloneStrings(modifiers), func(m string) bool { return m == tag })
	return s.with(tool, withModifiers(current, kept)), nil
}

// EditEnhancer replaces oldTag with newTag in tool's modifiers, keeping its
// position. If newTag is already present the two entries merge.
func (s State) EditEnhancer(tool ToolID, oldTag, newTag string) (State, error) {
	current, err := s.modifierShape(tool)
	if err != nil {
		return s, err
	}
	newTag = strings.TrimSpace(newTag)
	if newTag == "" {
		return s, fmt.Errorf("%w: empty modifier", ErrInvalidValue)
	}

	modifiers := cloneStrings(Modifiers(current))
	index := slices.Index(modifiers, oldTag)
	if index < 0 {
		return s, fmt.Errorf("%w: %q", ErrNotFound, oldTag)
	}
	if oldTag == newTag {
		return s, nil
	}

	if slices.Contains(modifiers, newTag) {
		modifiers = slices.Delete(modifiers, index, index+1)
	} else {
		modifiers[index] = newTag
	}
	return s.with(tool, withModifiers(current, modifiers)), nil
}

// SyncEnhancerAcrossBuilders adds tag to (or removes it from) every shape
// that carries modifiers, keeping enhancer lists consistent across tools.
func (s State) SyncEnhancerAcrossBuilders(tag string, add bool) State {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return s
	}

	next := s
	for _, tool := range Tools {
		if !HasModifiers(next.shapes[tool]) {
			continue
		}
		if add {
			next, _ = next.AddModifier(tool, tag)
		} else {
			// ErrNotFound on tools that never had the tag is fine.
			next, _ = next.DeleteEnhancer(tool, tag)
		}
	}
	return next
}

func (s State) modifierShape(tool ToolID) (Shape, error) {
	current, err := s.lookup(tool)
	if err != nil {
		return nil, err
	}
	if !HasModifiers(current) {
		return nil, fmt.Errorf("%w: %s on %s", ErrInvalidField, FieldModifiers, tool)
	}
	return current, nil
}
