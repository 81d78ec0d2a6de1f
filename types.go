package apifit

import (
	"reflect"
	"strings"
)

// Type describes the shape a decoded response tree is fitted into.
// Descriptions form a closed set: primitives (String, Int, Float, Bool),
// Optional, Sequence, Mapping, Record and Union. A Type is immutable once
// built and must not reference itself, directly or transitively: fitting
// is a structural recursion with no cycle detection. Values built with
// the constructors in this file cannot form cycles; TypeOf rejects
// recursive Go types when the description is derived by reflection.
type Type interface {
	// String returns the compact shape notation used in error messages
	// and generated schemas, e.g. "sequence(record Person)".
	String() string

	// GoType is the Go type a value of this shape materializes as.
	GoType() reflect.Type

	fit(v interface{}, path fitPath) (reflect.Value, error)
}

type primKind int

const (
	primString primKind = iota
	primInt
	primFloat
	primBool
)

func (k primKind) String() string {
	switch k {
	case primString:
		return "string"
	case primInt:
		return "integer"
	case primFloat:
		return "float"
	default:
		return "boolean"
	}
}

type primitiveType struct {
	kind   primKind
	goType reflect.Type

	// text materializes string values through encoding.TextUnmarshaler
	// implemented by *goType.
	text bool
}

func (t *primitiveType) String() string {
	if t.text {
		return "string (" + t.goType.String() + ")"
	}
	return t.kind.String()
}

func (t *primitiveType) GoType() reflect.Type { return t.goType }

var (
	stringGoType = reflect.TypeOf("")
	intGoType    = reflect.TypeOf(int64(0))
	floatGoType  = reflect.TypeOf(float64(0))
	boolGoType   = reflect.TypeOf(false)
	anyGoType    = reflect.TypeOf((*interface{})(nil)).Elem()
)

var (
	stringType = &primitiveType{kind: primString, goType: stringGoType}
	intType    = &primitiveType{kind: primInt, goType: intGoType}
	floatType  = &primitiveType{kind: primFloat, goType: floatGoType}
	boolType   = &primitiveType{kind: primBool, goType: boolGoType}
)

// String describes a string value. It materializes as Go string.
func String() Type { return stringType }

// Int describes an integral number. JSON numbers with a fractional part
// do not fit it. It materializes as int64.
func Int() Type { return intType }

// Float describes a number. It materializes as float64.
func Float() Type { return floatType }

// Bool describes a boolean. It materializes as bool.
func Bool() Type { return boolType }

type optionalType struct {
	elem   Type
	goType reflect.Type
}

func (t *optionalType) String() string { return "optional(" + t.elem.String() + ")" }
func (t *optionalType) GoType() reflect.Type { return t.goType }

// Optional describes a value that may be null or absent. An empty value
// materializes as a nil pointer to the element's Go type.
func Optional(elem Type) Type {
	return &optionalType{elem: elem, goType: reflect.PtrTo(elem.GoType())}
}

type sequenceType struct {
	elem   Type
	goType reflect.Type
}

func (t *sequenceType) String() string { return "sequence(" + t.elem.String() + ")" }
func (t *sequenceType) GoType() reflect.Type { return t.goType }

// Sequence describes an ordered list of elem values. It materializes as
// a slice of the element's Go type.
func Sequence(elem Type) Type {
	return &sequenceType{elem: elem, goType: reflect.SliceOf(elem.GoType())}
}

type mappingType struct {
	elem   Type
	goType reflect.Type
}

func (t *mappingType) String() string { return "mapping(" + t.elem.String() + ")" }
func (t *mappingType) GoType() reflect.Type { return t.goType }

// Mapping describes a string-keyed map of elem values. Keys are always
// strings. It materializes as map[string]E.
func Mapping(elem Type) Type {
	return &mappingType{elem: elem, goType: reflect.MapOf(stringGoType, elem.GoType())}
}

// RecordField is one declared field of a record.
type RecordField struct {
	name     string
	typ      Type
	optional bool

	// index is the reflect field index chain for records derived from
	// Go structs; nil for records built with Record.
	index []int
}

// Field declares a required record field.
func Field(name string, typ Type) RecordField {
	return RecordField{name: name, typ: typ}
}

// OptionalField declares a field that may be null or absent from the
// input without failing the record.
func OptionalField(name string, typ Type) RecordField {
	return RecordField{name: name, typ: typ, optional: true}
}

type recordType struct {
	fields []RecordField

	// goType is the source struct type for records derived with TypeOf
	// and map[string]interface{} for records built with Record.
	goType reflect.Type
}

func (t *recordType) String() string {
	if t.goType.Kind() == reflect.Struct {
		name := t.goType.String()
		if name == "" {
			name = "struct"
		}
		return "record " + name
	}
	names := make([]string, 0, len(t.fields))
	for _, f := range t.fields {
		name := f.name
		if f.optional {
			name += "?"
		}
		names = append(names, name)
	}
	return "record(" + strings.Join(names, ", ") + ")"
}

func (t *recordType) GoType() reflect.Type { return t.goType }

var genericRecordGoType = reflect.TypeOf(map[string]interface{}(nil))

// Record describes a record with the given named fields. Unknown keys in
// the input are always ignored. A record built this way materializes as
// map[string]interface{}; use TypeOf to fit into a Go struct instead.
func Record(fields ...RecordField) Type {
	copied := make([]RecordField, len(fields))
	copy(copied, fields)
	return &recordType{fields: copied, goType: genericRecordGoType}
}

type unionType struct {
	variants []Type
}

func (t *unionType) String() string {
	names := make([]string, 0, len(t.variants))
	for _, v := range t.variants {
		names = append(names, v.String())
	}
	return "union(" + strings.Join(names, ", ") + ")"
}

func (t *unionType) GoType() reflect.Type { return anyGoType }

// Union describes a value matching one of the variants. Variants are
// tried strictly left to right in declaration order and the first one
// that fits wins, even if a later variant would also fit; callers rely
// on declaration order for disambiguation. A union materializes as
// interface{} holding the chosen variant's value.
func Union(variants ...Type) Type {
	copied := make([]Type, len(variants))
	copy(copied, variants)
	return &unionType{variants: copied}
}
