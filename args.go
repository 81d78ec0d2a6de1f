package apifit

import (
	"encoding"
	"fmt"
	"sort"
)

// Args is the view of bound call arguments passed to computed axis
// functions. Positional call values are bound to the names declared in
// Endpoint.Args; a computed axis receives a fresh view restricted to
// the names it declared.
type Args struct {
	values map[string]interface{}
}

// bindArgs binds positional call values to declared names. Arity
// mismatch is programmer misuse and panics.
func bindArgs(endpoint string, names []string, values []interface{}) Args {
	if len(names) != len(values) {
		panic(fmt.Sprintf("endpoint %s: got %d arguments, want %d", endpoint, len(values), len(names)))
	}
	m := make(map[string]interface{}, len(names))
	for i, name := range names {
		m[name] = values[i]
	}
	return Args{values: m}
}

// subset returns a fresh view holding only the given names. Mutations
// of one resolver's view never leak into another's.
func (a Args) subset(names []string) Args {
	m := make(map[string]interface{}, len(names))
	for _, name := range names {
		m[name] = a.values[name]
	}
	return Args{values: m}
}

// Get returns the bound value of the named argument.
func (a Args) Get(name string) (interface{}, bool) {
	v, has := a.values[name]
	return v, has
}

// String returns the named argument stringified the same way URL
// placeholders and axis values are stringified: encoding.TextMarshaler
// if implemented, fmt otherwise. A name not bound in this view is a
// typo in a computed-axis function and panics instead of producing a
// bogus request value.
func (a Args) String(name string) string {
	v, has := a.values[name]
	if !has {
		panic("no bound argument with name " + name)
	}
	return stringifyValue(v)
}

// Names returns the argument names of the view, sorted.
func (a Args) Names() []string {
	names := make([]string, 0, len(a.values))
	for name := range a.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func stringifyValue(v interface{}) string {
	if marshaler, ok := v.(encoding.TextMarshaler); ok {
		valueBytes, err := marshaler.MarshalText()
		if err == nil {
			return string(valueBytes)
		}
	}
	return fmt.Sprintf("%v", v)
}
