package apifit

import (
	"encoding"
	"reflect"
	"strings"
)

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// TypeOf derives the Type of a Go value once, at declaration time. Use
// it to build Endpoint.Returns from the shape you want the response
// fitted into:
//
//	Returns: apifit.TypeOf(HttpGet{})
//
// Strings, integers, floats and booleans map to the primitives.
// Pointers become Optional, slices become Sequence, string-keyed maps
// become Mapping and structs become records with field names taken
// from json tags ("-" skips a field, ",omitempty" and pointer fields
// are optional, anonymous embedded structs are flattened). Types whose
// pointer implements encoding.TextUnmarshaler (e.g. time.Time)
// materialize from strings.
//
// Unsupported kinds (interfaces, channels, funcs, []byte, maps with
// non-string keys) and recursive types panic with *DeclarationError:
// fitting is a structural recursion, so the description must be
// acyclic.
func TypeOf(sample interface{}) Type {
	t := reflect.TypeOf(sample)
	if t == nil {
		panic(declErrf("", "TypeOf: nil sample"))
	}
	return typeOf(t, make(map[reflect.Type]bool))
}

func typeOf(t reflect.Type, seen map[reflect.Type]bool) Type {
	if t.Kind() != reflect.String && reflect.PtrTo(t).Implements(textUnmarshalerType) {
		return &primitiveType{kind: primString, goType: t, text: true}
	}

	switch t.Kind() {
	case reflect.String:
		return &primitiveType{kind: primString, goType: t}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &primitiveType{kind: primInt, goType: t}
	case reflect.Float32, reflect.Float64:
		return &primitiveType{kind: primFloat, goType: t}
	case reflect.Bool:
		return &primitiveType{kind: primBool, goType: t}
	case reflect.Ptr:
		return &optionalType{elem: typeOf(t.Elem(), seen), goType: t}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			panic(declErrf("", "TypeOf: %s is not supported, []byte has no tree shape", t))
		}
		return &sequenceType{elem: typeOf(t.Elem(), seen), goType: t}
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			panic(declErrf("", "TypeOf: %s is not supported, mapping keys must be strings", t))
		}
		return &mappingType{elem: typeOf(t.Elem(), seen), goType: t}
	case reflect.Struct:
		if seen[t] {
			panic(declErrf("", "TypeOf: %s is recursive, type descriptions must be acyclic", t))
		}
		seen[t] = true
		defer delete(seen, t)
		return &recordType{fields: structFields(t, nil, seen), goType: t}
	default:
		panic(declErrf("", "TypeOf: kind %s of %s is not supported", t.Kind(), t))
	}
}

// structFields collects record fields of a struct the way
// encoding/json names them, flattening anonymous embedded structs.
func structFields(t reflect.Type, index []int, seen map[reflect.Type]bool) []RecordField {
	fields := make([]RecordField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}

		fieldIndex := append(append([]int(nil), index...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct && tag == "" {
			fields = append(fields, structFields(field.Type, fieldIndex, seen)...)
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = field.Name
		}
		optional := field.Type.Kind() == reflect.Ptr
		for _, opt := range strings.Split(opts, ",") {
			if opt == "omitempty" {
				optional = true
			}
		}

		fields = append(fields, RecordField{
			name:     name,
			typ:      typeOf(field.Type, seen),
			optional: optional,
			index:    fieldIndex,
		})
	}
	return fields
}
