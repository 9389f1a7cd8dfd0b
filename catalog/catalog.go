// Package catalog holds the static data the builders draw from: the tool list,
// tag categories, Grok helper badges and ComfyUI node templates.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Tool describes one target generative system.
type Tool struct {
	ID          string `yaml:"id" json:"id"`
	Label       string `yaml:"label" json:"label"`
	Family      string `yaml:"family" json:"family"`
	Description string `yaml:"description" json:"description"`
}

// TagCategory is a named group of modifier tags.
type TagCategory struct {
	Name string   `yaml:"name" json:"name"`
	Tags []string `yaml:"tags" json:"tags"`
}

// FieldTemplate is the default value of one node field.
type FieldTemplate struct {
	Name  string `yaml:"name" json:"name"`
	Label string `yaml:"label" json:"label"`
	Value any    `yaml:"value" json:"value"`
}

// NodeTemplate describes a ComfyUI node that can be added to a graph.
type NodeTemplate struct {
	Key    string          `yaml:"key" json:"key"`
	Title  string          `yaml:"title" json:"title"`
	Type   string          `yaml:"type" json:"type"`
	Fields []FieldTemplate `yaml:"fields" json:"fields"`
}

// Catalog is the parsed catalog document.
type Catalog struct {
	Tools           []Tool         `yaml:"tools" json:"tools"`
	VideoCategories []TagCategory  `yaml:"video_categories" json:"videoCategories"`
	SDCategories    []TagCategory  `yaml:"sd_categories" json:"sdCategories"`
	GrokBadges      []string       `yaml:"grok_badges" json:"grokBadges"`
	GrokTones       []string       `yaml:"grok_tones" json:"grokTones"`
	NodeTemplates   []NodeTemplate `yaml:"node_templates" json:"nodeTemplates"`
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("error parsing catalog: %w", err)
	}
	if len(c.Tools) == 0 {
		return nil, fmt.Errorf("catalog has no tools")
	}
	return &c, nil
}

var loadDefault = sync.OnceValue(func() *Catalog {
	c, err := Parse(embedded)
	if err != nil {
		panic(err)
	}
	return c
})

// Default returns the embedded catalog. The result is shared; do not modify it.
func Default() *Catalog {
	return loadDefault()
}

// Tool returns the tool with the given id.
func (c *Catalog) Tool(id string) (Tool, bool) {
	for _, tool := range c.Tools {
		if tool.ID == id {
			return tool, true
		}
	}
	return Tool{}, false
}

// Template returns the node template with the given key.
func (c *Catalog) Template(key string) (NodeTemplate, bool) {
	for _, template := range c.NodeTemplates {
		if template.Key == key {
			return template, true
		}
	}
	return NodeTemplate{}, false
}
