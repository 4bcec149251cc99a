// Package pg implements the per-step records output by policy gradient
// agents and their curiosity modules. Each record has a fixed schema:
// an ordered list of named fields. Field values are tensors, nested
// records, or nil placeholders.
//
// Records are immutable values. Records of different schemas are
// different types and never compare equal, even if their field values
// coincide.
package pg

import (
	"errors"
	"fmt"
	"strings"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Errors returned when constructing or accessing records
var (
	ErrArity         = errors.New("wrong number of field values")
	ErrFieldType     = errors.New("field values must be tensors, records, or nil")
	ErrNoField       = errors.New("no such field")
	ErrUnknownSchema = errors.New("unknown schema")
)

// Record is a fixed-schema record of per-step values
type Record interface {
	// Schema returns the name of the record's schema
	Schema() string

	// Fields returns the names of the record's fields in order
	Fields() []string

	// Values returns the record's field values, in the order of
	// Fields
	Values() []interface{}

	// Field returns the value of the named field
	Field(name string) (interface{}, error)
}

// schema describes a registered record schema
type schema struct {
	fields      []string
	placeholder bool
	create      func(values ...interface{}) (Record, error)
}

// Registered schemas, in registration order
var (
	schemas     = make(map[string]schema)
	schemaNames []string
)

// register registers a record schema so that records of that schema can
// be created by name with New
func register(name string, fields []string, placeholder bool,
	create func(values ...interface{}) (Record, error)) {
	if _, ok := schemas[name]; ok {
		panic(fmt.Sprintf("register: schema %v registered twice", name))
	}
	schemas[name] = schema{
		fields:      fields,
		placeholder: placeholder,
		create:      create,
	}
	schemaNames = append(schemaNames, name)
}

// New returns a new record of the named schema with the given field
// values in declaration order
func New(name string, values ...interface{}) (Record, error) {
	s, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("new: %w: %q", ErrUnknownSchema, name)
	}
	return s.create(values...)
}

// Schemas returns the names of all registered schemas
func Schemas() []string {
	names := make([]string, len(schemaNames))
	copy(names, schemaNames)
	return names
}

// FieldsOf returns the field names of the named schema
func FieldsOf(name string) ([]string, error) {
	s, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("fieldsof: %w: %q", ErrUnknownSchema, name)
	}
	fields := make([]string, len(s.fields))
	copy(fields, s.fields)
	return fields, nil
}

// IsPlaceholder returns whether the named schema is a placeholder
// whose contents have not been defined yet
func IsPlaceholder(name string) bool {
	return schemas[name].placeholder
}

// fill checks that values match the named schema and stores them in
// dst, which holds one pointer per field.
func fill(name string, values []interface{}, dst ...*interface{}) error {
	op := "new" + strings.ToLower(name)
	if len(values) != len(dst) {
		return fmt.Errorf("%v: %w: %v has %v fields %v, got %v values",
			op, ErrArity, name, len(dst), schemas[name].fields, len(values))
	}

	for i, v := range values {
		if err := checkValue(v); err != nil {
			return fmt.Errorf("%v: field %v: %w", op,
				schemas[name].fields[i], err)
		}
		*dst[i] = v
	}
	return nil
}

// checkValue returns an error if v cannot be stored in a record
func checkValue(v interface{}) error {
	switch v.(type) {
	case nil, tensor.Tensor, Record:
		return nil
	default:
		return fmt.Errorf("%w: have %T", ErrFieldType, v)
	}
}

// field returns the value of the named field of r
func field(r Record, name string) (interface{}, error) {
	values := r.Values()
	for i, f := range r.Fields() {
		if f == name {
			return values[i], nil
		}
	}
	return nil, fmt.Errorf("field: %w: %v has no field %q", ErrNoField,
		r.Schema(), name)
}

// At returns the record holding the idx-th element along the leading
// dimension of each tensor in r. Nested records are indexed
// recursively and nil fields stay nil.
func At(r Record, idx int) (Record, error) {
	values := r.Values()
	for i, v := range values {
		switch v := v.(type) {
		case tensor.Tensor:
			sliced, err := v.Slice(G.S(idx))
			if err != nil {
				return nil, fmt.Errorf("at: field %v: %v", r.Fields()[i], err)
			}
			values[i] = sliced

		case Record:
			nested, err := At(v, idx)
			if err != nil {
				return nil, fmt.Errorf("at: field %v: %w", r.Fields()[i], err)
			}
			values[i] = nested
		}
	}

	return New(r.Schema(), values...)
}
