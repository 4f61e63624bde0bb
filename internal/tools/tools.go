// Package tools defines the static catalog of dispatchable functions offered
// to the voice agent's LLM. The catalog is the single source of truth for
// function names, parameter schemas and backend routing metadata: the
// dispatch bridge validates arguments against it, the LLM runtime receives
// its [llm.ToolDefinition] rendering, and the MCP server re-exports it.
package tools

import "github.com/novanode-ai/callbridge/pkg/provider/llm"

// Param describes a single function parameter.
type Param struct {
	// Name is the parameter name as it appears in the JSON arguments.
	Name string

	// Type is the JSON Schema type ("string", "integer", "boolean", "array").
	Type string

	// Required marks the parameter as mandatory.
	Required bool

	// Description explains the parameter to the model.
	Description string

	// Enum restricts string parameters to a fixed value set.
	Enum []string

	// Items is the JSON Schema for array element types.
	Items map[string]any
}

// Spec describes one dispatchable function: its LLM-facing schema plus the
// backend routing used by the dispatch bridge.
type Spec struct {
	// Name is the function's unique identifier.
	Name string

	// Description explains what the function does.
	Description string

	// Params is the ordered parameter list.
	Params []Param

	// Method is the HTTP method of the backend call ("GET" or "POST").
	Method string

	// Path is the backend route. Lookup functions interpolate arguments into
	// {placeholder} segments.
	Path string

	// Mutating marks functions that create or modify backend records.
	Mutating bool

	// Modes lists the agent modes that offer this function.
	Modes []string
}

// Required returns the names of the mandatory parameters in declaration order.
func (s Spec) Required() []string {
	var req []string
	for _, p := range s.Params {
		if p.Required {
			req = append(req, p.Name)
		}
	}
	return req
}

// Definition renders the spec as an LLM tool definition with a JSON Schema
// parameter object.
func (s Spec) Definition() llm.ToolDefinition {
	props := make(map[string]any, len(s.Params))
	for _, p := range s.Params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Items != nil {
			prop["items"] = p.Items
		}
		props[p.Name] = prop
	}

	params := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if req := s.Required(); len(req) > 0 {
		params["required"] = req
	}

	return llm.ToolDefinition{
		Name:        s.Name,
		Description: s.Description,
		Parameters:  params,
	}
}

// Definitions renders the whole catalog as LLM tool definitions.
func Definitions() []llm.ToolDefinition {
	specs := Catalog()
	defs := make([]llm.ToolDefinition, 0, len(specs))
	for _, s := range specs {
		defs = append(defs, s.Definition())
	}
	return defs
}

// ForMode returns the specs offered in the given agent mode. An unknown mode
// yields an empty slice.
func ForMode(mode string) []Spec {
	var specs []Spec
	for _, s := range Catalog() {
		for _, m := range s.Modes {
			if m == mode {
				specs = append(specs, s)
				break
			}
		}
	}
	return specs
}

// Lookup returns the spec with the given name.
func Lookup(name string) (Spec, bool) {
	for _, s := range Catalog() {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}
