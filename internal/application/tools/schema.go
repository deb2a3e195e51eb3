package tools

// JSONSchema is the subset of JSON Schema used to describe tool arguments
type JSONSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
	Default     any                    `json:"default,omitempty"`
	Minimum     *float64               `json:"minimum,omitempty"`
	Maximum     *float64               `json:"maximum,omitempty"`
}

// ObjectSchema describes an object argument with the given properties
func ObjectSchema(props map[string]*JSONSchema, required ...string) *JSONSchema {
	return &JSONSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// StringProp describes a string argument
func StringProp(desc string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: desc}
}

// NumberProp describes a numeric argument
func NumberProp(desc string) *JSONSchema {
	return &JSONSchema{Type: "number", Description: desc}
}

// IntProp describes an integer argument
func IntProp(desc string) *JSONSchema {
	return &JSONSchema{Type: "integer", Description: desc}
}

// EnumProp describes a string argument limited to values
func EnumProp(desc string, values ...string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: desc, Enum: values}
}

// WithDefault sets the value used when the argument is omitted
func (s *JSONSchema) WithDefault(v any) *JSONSchema {
	s.Default = v
	return s
}

// WithRange sets inclusive numeric bounds
func (s *JSONSchema) WithRange(lo, hi float64) *JSONSchema {
	s.Minimum = &lo
	s.Maximum = &hi
	return s
}
