// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"github.com/jeranaias/sheetrun-tui/internal/stream"
)

// =============================================================================
// WIRE FORMAT CONVERSION
// =============================================================================

// ToSchemas converts the catalog into the tool schemas advertised to the
// model, in catalog order.
func (r *Registry) ToSchemas() []stream.ToolSchema {
	defs := r.All()
	out := make([]stream.ToolSchema, 0, len(defs))
	for _, def := range defs {
		out = append(out, toSchema(def))
	}
	return out
}

func toSchema(def Definition) stream.ToolSchema {
	props := make(map[string]stream.Property, len(def.Parameters))
	var required []string

	for _, p := range def.Parameters {
		prop := stream.Property{
			Type:        p.Type,
			Description: p.Description,
			Enum:        p.Enum,
		}
		// Row and matrix arguments carry untyped elements; leave Items
		// unset so nested arrays validate.
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return stream.ToolSchema{
		Type: "function",
		Function: stream.FunctionSchema{
			Name:        string(def.Name),
			Description: def.Description,
			Parameters: stream.ParamSchema{
				Type:       "object",
				Properties: props,
				Required:   required,
			},
		},
	}
}
