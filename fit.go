package apifit

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Fit matches a decoded value tree against the wanted shape and
// materializes the typed value. Fitting is all-or-nothing: any
// mismatch anywhere in the recursion propagates up immediately as a
// *FitError carrying the full path, and no partial value escapes.
//
// The tree is what a JSON decoder produces: map[string]interface{},
// []interface{}, string, json.Number, bool and nil. Plain Go numbers
// (int, int64, float64) are accepted too, for decode hooks that
// produce them.
func Fit(tree interface{}, want Type) (interface{}, error) {
	rv, err := want.fit(tree, "")
	if err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}

// FitInto fits the tree and stores the result into out, which must be
// a non-nil pointer to a type the fitted value is assignable to.
func FitInto(tree interface{}, want Type, out interface{}) error {
	rv, err := want.fit(tree, "")
	if err != nil {
		return err
	}
	outValue := reflect.ValueOf(out)
	if outValue.Kind() != reflect.Ptr || outValue.IsNil() {
		return fmt.Errorf("out must be a non-nil pointer, got %T", out)
	}
	target := outValue.Elem()
	if !rv.Type().AssignableTo(target.Type()) {
		return fmt.Errorf("fitted value of type %s is not assignable to %s", rv.Type(), target.Type())
	}
	target.Set(rv)
	return nil
}

// fitPath is the position inside the tree, e.g. "user.posts[2].id".
type fitPath string

func (p fitPath) field(name string) fitPath {
	if p == "" {
		return fitPath(name)
	}
	return p + "." + fitPath(name)
}

func (p fitPath) index(i int) fitPath {
	return p + fitPath(fmt.Sprintf("[%d]", i))
}

func mismatch(path fitPath, want Type, v interface{}) error {
	return &FitError{
		Path:     string(path),
		Expected: want.String(),
		Actual:   treeKind(v),
	}
}

// treeKind names the runtime kind of a tree node for error messages.
func treeKind(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("string %q", v)
	case bool:
		return fmt.Sprintf("boolean %v", v)
	case json.Number:
		return fmt.Sprintf("number %s", v.String())
	case int, int64, float64:
		return fmt.Sprintf("number %v", v)
	case []interface{}:
		return "sequence"
	case map[string]interface{}:
		return "mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func asInt64(v interface{}) (int64, bool) {
	switch v := v.(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

func asFloat64(v interface{}) (float64, bool) {
	switch v := v.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func (t *primitiveType) fit(v interface{}, path fitPath) (reflect.Value, error) {
	switch t.kind {
	case primString:
		s, ok := v.(string)
		if !ok {
			return reflect.Value{}, mismatch(path, t, v)
		}
		if t.text {
			out := reflect.New(t.goType)
			if err := out.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
				return reflect.Value{}, &FitError{
					Path:     string(path),
					Expected: t.String(),
					Actual:   fmt.Sprintf("string %q (%v)", s, err),
				}
			}
			return out.Elem(), nil
		}
		return reflect.ValueOf(s).Convert(t.goType), nil

	case primInt:
		n, ok := asInt64(v)
		if !ok {
			return reflect.Value{}, mismatch(path, t, v)
		}
		out := reflect.New(t.goType).Elem()
		switch t.goType.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if n < 0 || out.OverflowUint(uint64(n)) {
				return reflect.Value{}, &FitError{
					Path:     string(path),
					Expected: t.goType.String(),
					Actual:   fmt.Sprintf("number %d (out of range)", n),
				}
			}
			out.SetUint(uint64(n))
		default:
			if out.OverflowInt(n) {
				return reflect.Value{}, &FitError{
					Path:     string(path),
					Expected: t.goType.String(),
					Actual:   fmt.Sprintf("number %d (out of range)", n),
				}
			}
			out.SetInt(n)
		}
		return out, nil

	case primFloat:
		f, ok := asFloat64(v)
		if !ok {
			return reflect.Value{}, mismatch(path, t, v)
		}
		out := reflect.New(t.goType).Elem()
		out.SetFloat(f)
		return out, nil

	default: // primBool
		b, ok := v.(bool)
		if !ok {
			return reflect.Value{}, mismatch(path, t, v)
		}
		return reflect.ValueOf(b).Convert(t.goType), nil
	}
}

func (t *optionalType) fit(v interface{}, path fitPath) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t.goType), nil
	}
	elem, err := t.elem.fit(v, path)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(t.goType.Elem())
	out.Elem().Set(elem)
	return out, nil
}

func (t *sequenceType) fit(v interface{}, path fitPath) (reflect.Value, error) {
	list, ok := v.([]interface{})
	if !ok {
		return reflect.Value{}, mismatch(path, t, v)
	}
	out := reflect.MakeSlice(t.goType, len(list), len(list))
	for i, item := range list {
		// Fail fast: the first mismatching element short-circuits the
		// whole sequence.
		elem, err := t.elem.fit(item, path.index(i))
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(elem)
	}
	return out, nil
}

func (t *mappingType) fit(v interface{}, path fitPath) (reflect.Value, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return reflect.Value{}, mismatch(path, t, v)
	}
	// Keys are visited in sorted order so that the reported failure is
	// the same on every run.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := reflect.MakeMapWithSize(t.goType, len(m))
	for _, k := range keys {
		elem, err := t.elem.fit(m[k], path.field(k))
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(reflect.ValueOf(k).Convert(t.goType.Key()), elem)
	}
	return out, nil
}

func (t *recordType) fit(v interface{}, path fitPath) (reflect.Value, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return reflect.Value{}, mismatch(path, t, v)
	}

	// Unknown extra keys of m are ignored: records are open-world.

	if t.goType.Kind() == reflect.Struct {
		out := reflect.New(t.goType).Elem()
		for _, f := range t.fields {
			raw, has := m[f.name]
			if !has || raw == nil {
				if f.optional {
					continue
				}
				if !has {
					return reflect.Value{}, &FitError{
						Path:     string(path.field(f.name)),
						Expected: f.typ.String(),
						Actual:   "absent",
					}
				}
			}
			fieldValue, err := f.typ.fit(raw, path.field(f.name))
			if err != nil {
				return reflect.Value{}, err
			}
			out.FieldByIndex(f.index).Set(fieldValue)
		}
		return out, nil
	}

	out := make(map[string]interface{}, len(t.fields))
	for _, f := range t.fields {
		raw, has := m[f.name]
		if !has || raw == nil {
			if f.optional {
				continue
			}
			if !has {
				return reflect.Value{}, &FitError{
					Path:     string(path.field(f.name)),
					Expected: f.typ.String(),
					Actual:   "absent",
				}
			}
		}
		fieldValue, err := f.typ.fit(raw, path.field(f.name))
		if err != nil {
			return reflect.Value{}, err
		}
		out[f.name] = fieldValue.Interface()
	}
	return reflect.ValueOf(out), nil
}

func (t *unionType) fit(v interface{}, path fitPath) (reflect.Value, error) {
	// Variants are tried strictly in declaration order, the first fit
	// wins. No best-match heuristic: callers rely on the order for
	// disambiguation.
	subErrors := make([]error, 0, len(t.variants))
	for _, variant := range t.variants {
		fitted, err := variant.fit(v, path)
		if err == nil {
			out := reflect.New(anyGoType).Elem()
			out.Set(fitted)
			return out, nil
		}
		subErrors = append(subErrors, err)
	}
	return reflect.Value{}, &FitError{
		Path:     string(path),
		Expected: t.String(),
		Actual:   treeKind(v),
		Variants: subErrors,
	}
}
