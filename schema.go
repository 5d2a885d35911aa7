package minapi

import (
	"mime/multipart"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// JSONSchema is the subset of JSON Schema used to describe body types in the
// endpoint catalog.
type JSONSchema struct {
	Type        string                `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string                `json:"format,omitempty" yaml:"format,omitempty"`
	Properties  map[string]JSONSchema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items       *JSONSchema           `json:"items,omitempty" yaml:"items,omitempty"`
	Required    []string              `json:"required,omitempty" yaml:"required,omitempty"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Enum        []string              `json:"enum,omitempty" yaml:"enum,omitempty"`
	MinLength   *int                  `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int                  `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern     string                `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Minimum     *float64              `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum     *float64              `json:"maximum,omitempty" yaml:"maximum,omitempty"`

	// AdditionalProperties describes map values.
	AdditionalProperties *JSONSchema `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
}

// SchemaFor returns the JSON Schema of t as the JSON codec sees it.
func SchemaFor(t reflect.Type) JSONSchema {
	return typeToSchema(t, map[reflect.Type]bool{})
}

func typeToSchema(t reflect.Type, visiting map[reflect.Type]bool) JSONSchema {
	if t.Kind() == reflect.Pointer {
		return typeToSchema(t.Elem(), visiting)
	}

	switch t {
	case reflect.TypeFor[time.Time]():
		return JSONSchema{Type: "string", Format: "date-time"}
	case reflect.TypeFor[time.Duration]():
		return JSONSchema{Type: "integer", Format: "int64"}
	case reflect.TypeFor[Void]():
		return JSONSchema{}
	case reflect.TypeFor[Stream](), reflect.TypeFor[File](), reflect.TypeFor[multipart.FileHeader]():
		return JSONSchema{Type: "string", Format: "binary"}
	case reflect.TypeFor[Problem](), reflect.TypeFor[ValidationProblem]():
		return problemSchema(t == reflect.TypeFor[ValidationProblem]())
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return JSONSchema{Type: "string"}
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.String:
		return JSONSchema{Type: "string"}
	case reflect.Bool:
		return JSONSchema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return JSONSchema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return JSONSchema{Type: "number"}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return JSONSchema{Type: "string", Format: "byte"}
		}
		items := typeToSchema(t.Elem(), visiting)
		return JSONSchema{Type: "array", Items: &items}
	case reflect.Array:
		items := typeToSchema(t.Elem(), visiting)
		return JSONSchema{Type: "array", Items: &items}
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return JSONSchema{Type: "object"}
		}
		valSchema := typeToSchema(t.Elem(), visiting)
		return JSONSchema{Type: "object", AdditionalProperties: &valSchema}
	case reflect.Struct:
		if visiting[t] {
			return JSONSchema{Type: "object"}
		}
		visiting[t] = true
		defer delete(visiting, t)
		return structToSchema(t, visiting)
	default:
		return JSONSchema{}
	}
}

// structToSchema converts a struct type to a JSONSchema with properties.
func structToSchema(t reflect.Type, visiting map[reflect.Type]bool) JSONSchema {
	schema := JSONSchema{
		Type:       "object",
		Properties: make(map[string]JSONSchema),
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := jsonFieldName(f)
		if name == "-" {
			continue
		}

		prop := typeToSchema(f.Type, visiting)
		applyConstraintTags(&prop, f)
		if doc := f.Tag.Get("doc"); doc != "" {
			prop.Description = doc
		}
		schema.Properties[name] = prop

		if isRequiredField(f) {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema
}

// applyConstraintTags copies the tags checkConstraints enforces into the schema.
func applyConstraintTags(s *JSONSchema, f reflect.StructField) {
	if n, ok := intTag(f, "minLength"); ok {
		s.MinLength = &n
	}
	if n, ok := intTag(f, "maxLength"); ok {
		s.MaxLength = &n
	}
	s.Pattern = f.Tag.Get("pattern")
	if tag := f.Tag.Get("enum"); tag != "" {
		s.Enum = strings.Split(tag, ",")
	}
	if v, err := strconv.ParseFloat(f.Tag.Get("minimum"), 64); err == nil {
		s.Minimum = &v
	}
	if v, err := strconv.ParseFloat(f.Tag.Get("maximum"), 64); err == nil {
		s.Maximum = &v
	}
}

func isRequiredField(f reflect.StructField) bool {
	if f.Tag.Get("required") == "true" {
		return true
	}
	for rule := range strings.SplitSeq(f.Tag.Get("validate"), ",") {
		if rule == "required" {
			return true
		}
	}
	return false
}

func problemSchema(validation bool) JSONSchema {
	s := JSONSchema{
		Type: "object",
		Properties: map[string]JSONSchema{
			"type":     {Type: "string"},
			"title":    {Type: "string"},
			"status":   {Type: "integer"},
			"detail":   {Type: "string"},
			"instance": {Type: "string"},
		},
	}
	if validation {
		msgs := JSONSchema{Type: "array", Items: &JSONSchema{Type: "string"}}
		s.Properties["errors"] = JSONSchema{Type: "object", AdditionalProperties: &msgs}
	}
	return s
}

// jsonFieldName returns the JSON field name for a struct field.
func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}
