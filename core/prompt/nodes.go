package prompt

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/leofalp/promptcraft/catalog"
	"github.com/leofalp/promptcraft/internal/utils"
)

func nodeFromTemplate(id int, template catalog.NodeTemplate) GraphNode {
	fields := make([]NodeField, len(template.Fields))
	for i, field := range template.Fields {
		fields[i] = NodeField{Name: field.Name, Label: field.Label, Value: field.Value}
	}
	return GraphNode{
		ID:          id,
		TemplateKey: template.Key,
		Title:       template.Title,
		Type:        template.Type,
		Fields:      fields,
	}
}

func (s State) comfy() DiffusionShape {
	shape, _ := s.shapes[Comfy].(DiffusionShape)
	return shape
}

// AddNode appends a node built from the catalog template with the given key
// to the comfy graph. The node gets the next unused id.
func (s State) AddNode(templateKey string) (State, GraphNode, error) {
	template, ok := catalog.Default().Template(templateKey)
	if !ok {
		return s, GraphNode{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, templateKey)
	}

	node := nodeFromTemplate(s.nextNodeID, template)
	shape := s.comfy()
	shape.Nodes = append(cloneNodes(shape.Nodes), node)
	if shape.Modifiers == nil {
		shape.Modifiers = []string{}
	}

	next := s.with(Comfy, shape)
	next.nextNodeID = s.nextNodeID + 1
	return next, node, nil
}

// RemoveNode deletes the comfy node with the given id. Its id is not reused.
func (s State) RemoveNode(id int) (State, error) {
	shape := s.comfy()
	index := slices.IndexFunc(shape.Nodes, func(n GraphNode) bool { return n.ID == id })
	if index < 0 {
		return s, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}

	nodes := cloneNodes(shape.Nodes)
	shape.Nodes = slices.Delete(nodes, index, index+1)
	return s.with(Comfy, shape), nil
}

// SetNodeField sets one field of a comfy node, appending the field if the
// node does not have it yet.
func (s State) SetNodeField(id int, field string, value any) (State, error) {
	if strings.TrimSpace(field) == "" {
		return s, fmt.Errorf("%w: empty node field name", ErrInvalidValue)
	}

	shape := s.comfy()
	index := slices.IndexFunc(shape.Nodes, func(n GraphNode) bool { return n.ID == id })
	if index < 0 {
		return s, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}

	nodes := cloneNodes(shape.Nodes)
	node := &nodes[index]
	if f := slices.IndexFunc(node.Fields, func(nf NodeField) bool { return nf.Name == field }); f >= 0 {
		node.Fields[f].Value = value
	} else {
		node.Fields = append(node.Fields, NodeField{Name: field, Value: value})
	}

	shape.Nodes = nodes
	return s.with(Comfy, shape), nil
}

// ImportNodes replaces the comfy graph with nodes, assigning each a fresh id
// so ids already handed out are never reused.
func (s State) ImportNodes(nodes []GraphNode) State {
	imported := cloneNodes(nodes)
	if imported == nil {
		imported = []GraphNode{}
	}

	nextID := s.nextNodeID
	for i := range imported {
		imported[i].ID = nextID
		nextID++
	}

	shape := s.comfy()
	shape.Nodes = imported
	if shape.Modifiers == nil {
		shape.Modifiers = []string{}
	}
	next := s.with(Comfy, shape)
	next.nextNodeID = nextID
	return next
}

// SetParam sets one a1111 generation parameter, appending it when new. After
// a clear the parameter list is absent and starts over from this one entry.
func (s State) SetParam(name string, value any) (State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, fmt.Errorf("%w: empty parameter name", ErrInvalidValue)
	}

	shape, _ := s.shapes[A1111].(DiffusionShape)
	params := slices.Clone(shape.Params)
	if i := slices.IndexFunc(params, func(p Param) bool { return p.Name == name }); i >= 0 {
		params[i].Value = value
	} else {
		params = append(params, Param{Name: name, Value: value})
	}

	shape.Params = params
	return s.with(A1111, shape), nil
}

// apiNode is one entry of a ComfyUI API-format workflow.
type apiNode struct {
	ClassType string         `json:"class_type"`
	Inputs    map[string]any `json:"inputs"`
	Meta      struct {
		Title string `json:"title"`
	} `json:"_meta"`
}

// ParseNodes reads a node graph from raw JSON. Two layouts are accepted: a
// list of GraphNode objects, or a ComfyUI API-format workflow (an object keyed
// by node id holding class_type and inputs). Links between nodes are not kept.
// Sloppy JSON (trailing commas, single quotes, code fences) is repaired.
func ParseNodes(raw string) ([]GraphNode, error) {
	document, err := utils.ParseJSONAs[json.RawMessage](raw)
	if err != nil {
		return nil, fmt.Errorf("error parsing node graph: %w", err)
	}

	trimmed := strings.TrimSpace(string(document))
	if strings.HasPrefix(trimmed, "[") {
		var nodes []GraphNode
		if err := json.Unmarshal(document, &nodes); err != nil {
			return nil, fmt.Errorf("error decoding node list: %w", err)
		}
		return nodes, nil
	}

	var workflow map[string]apiNode
	if err := json.Unmarshal(document, &workflow); err != nil {
		return nil, fmt.Errorf("error decoding workflow: %w", err)
	}
	return nodesFromWorkflow(workflow), nil
}

func nodesFromWorkflow(workflow map[string]apiNode) []GraphNode {
	ids := make([]string, 0, len(workflow))
	for id := range workflow {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		na, errA := strconv.Atoi(a)
		nb, errB := strconv.Atoi(b)
		if errA == nil && errB == nil {
			return na - nb
		}
		return strings.Compare(a, b)
	})

	nodes := make([]GraphNode, 0, len(ids))
	for _, id := range ids {
		entry := workflow[id]
		node := GraphNode{
			TemplateKey: entry.ClassType,
			Title:       entry.Meta.Title,
			Type:        "imported",
			Fields:      []NodeField{},
		}
		if node.Title == "" {
			node.Title = entry.ClassType
		}
		if template, ok := catalog.Default().Template(entry.ClassType); ok {
			node.Type = template.Type
		}
		node.ID, _ = strconv.Atoi(id)

		names := make([]string, 0, len(entry.Inputs))
		for name, value := range entry.Inputs {
			// [source node id, slot] pairs are links, not values.
			if _, isLink := value.([]any); isLink {
				continue
			}
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			node.Fields = append(node.Fields, NodeField{Name: name, Value: entry.Inputs[name]})
		}
		nodes = append(nodes, node)
	}
	return nodes
}
