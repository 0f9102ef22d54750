// Package bind represents statement parameter sets.
//
// A Values is either positional (an ordered sequence) or named (ordered,
// unique name to value pairs), never both. Nulls are explicit: a nil, a
// typed nil pointer or the Null marker all occupy a slot and are sent as
// CQL null. Unset is a separate marker that leaves the column untouched.
//
// Values never checks its length against the placeholders of a query. The
// placeholder count of arbitrary CQL text is not known client side, so a
// mismatch is left to the server, which reports it with its own error kind.
package bind

import (
	"bytes"
	"reflect"
	"slices"

	"github.com/arloliu/quill/types"
)

// Mode is the binding mode of a Values.
type Mode = types.BindMode

// Re-export binding modes for convenience.
const (
	None       = types.BindNone
	Positional = types.BindPositional
	Named      = types.BindNamed
)

type nullValue struct{}

// Null is the explicit "set to null" marker.
//
// It is equivalent to passing nil and exists for call sites where an
// untyped nil reads ambiguously.
var Null = nullValue{}

// Unset is the "leave unset" marker. See types.UnsetValue.
var Unset = types.Unset

// Pair is a single named value.
type Pair struct {
	Name  string
	Value any
}

// Values is an immutable parameter set.
//
// The zero value binds nothing.
type Values struct {
	mode  Mode
	names []string
	vals  []any
}

// Of creates positional values.
//
// Parameters:
//   - values: Values in placeholder order; nil entries are nulls
//
// Returns:
//   - Values: Positional values, or empty values if none were given
//
// Example:
//
//	vals := bind.Of("test", nil) // k = 'test', v = null
func Of(values ...any) Values {
	if len(values) == 0 {
		return Values{}
	}

	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = normalize(v)
	}

	return Values{mode: Positional, vals: vals}
}

// NamedOf creates named values preserving pair order.
//
// Parameters:
//   - pairs: Name/value pairs; names must be non-empty and unique
//
// Returns:
//   - Values: Named values
//   - error: *types.InvalidArgumentError on an empty or duplicate name
//
// Example:
//
//	vals, err := bind.NamedOf(bind.Pair{Name: "k", Value: "test"}, bind.Pair{Name: "v", Value: bind.Null})
func NamedOf(pairs ...Pair) (Values, error) {
	if len(pairs) == 0 {
		return Values{}, nil
	}

	names := make([]string, 0, len(pairs))
	vals := make([]any, 0, len(pairs))
	for _, p := range pairs {
		if p.Name == "" {
			return Values{}, types.NewInvalidArgument("bind.NamedOf", "name", "must not be empty")
		}
		if slices.Contains(names, p.Name) {
			return Values{}, types.NewInvalidArgument("bind.NamedOf", p.Name, "duplicate parameter name")
		}
		names = append(names, p.Name)
		vals = append(vals, normalize(p.Value))
	}

	return Values{mode: Named, names: names, vals: vals}, nil
}

// FromMap creates named values from a map, ordered by name.
//
// Parameters:
//   - m: Parameter name to value map
//
// Returns:
//   - Values: Named values
//   - error: *types.InvalidArgumentError on an empty name
func FromMap(m map[string]any) (Values, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)

	pairs := make([]Pair, len(names))
	for i, name := range names {
		pairs[i] = Pair{Name: name, Value: m[name]}
	}

	return NamedOf(pairs...)
}

// Restore rebuilds values from their decomposed form, as stored in a
// types.StatementRecord.
//
// Parameters:
//   - mode: Binding mode
//   - names: Parameter names for Named mode, parallel to values
//   - values: Bound values
//
// Returns:
//   - Values: The rebuilt values
//   - error: *types.InvalidArgumentError if names and values disagree
func Restore(mode Mode, names []string, values []any) (Values, error) {
	switch mode {
	case None:
		if len(values) != 0 {
			return Values{}, types.NewInvalidArgument("bind.Restore", "values", "unexpected values for unbound mode")
		}

		return Values{}, nil
	case Positional:
		return Of(values...), nil
	case Named:
		if len(names) != len(values) {
			return Values{}, types.NewInvalidArgument("bind.Restore", "names", "length does not match values")
		}
		pairs := make([]Pair, len(names))
		for i := range names {
			pairs[i] = Pair{Name: names[i], Value: values[i]}
		}

		return NamedOf(pairs...)
	}

	return Values{}, types.NewInvalidArgument("bind.Restore", "mode", "unknown binding mode")
}

// Append returns a copy with values appended positionally.
//
// Returns:
//   - Values: The extended values
//   - error: *types.InvalidArgumentError if v is in named mode
func (v Values) Append(values ...any) (Values, error) {
	if v.mode == Named {
		return v, types.NewInvalidArgument("bind.Append", "values", "cannot append positional values to named values")
	}

	vals := make([]any, 0, len(v.vals)+len(values))
	vals = append(vals, v.vals...)
	for _, val := range values {
		vals = append(vals, normalize(val))
	}
	if len(vals) == 0 {
		return Values{}, nil
	}

	return Values{mode: Positional, vals: vals}, nil
}

// With returns a copy with name bound to value.
//
// An existing binding for name is replaced in place; a new name is appended.
//
// Returns:
//   - Values: The updated values
//   - error: *types.InvalidArgumentError if v is positional or name is empty
func (v Values) With(name string, value any) (Values, error) {
	if v.mode == Positional {
		return v, types.NewInvalidArgument("bind.With", name, "cannot add a named value to positional values")
	}
	if name == "" {
		return v, types.NewInvalidArgument("bind.With", "name", "must not be empty")
	}

	names := slices.Clone(v.names)
	vals := slices.Clone(v.vals)
	if idx := slices.Index(names, name); idx >= 0 {
		vals[idx] = normalize(value)
	} else {
		names = append(names, name)
		vals = append(vals, normalize(value))
	}

	return Values{mode: Named, names: names, vals: vals}, nil
}

// Mode returns the binding mode.
func (v Values) Mode() Mode {
	return v.mode
}

// Len returns the number of bound slots.
func (v Values) Len() int {
	return len(v.vals)
}

// At returns the value in slot i. Nulls are returned as nil.
func (v Values) At(i int) (any, bool) {
	if i < 0 || i >= len(v.vals) {
		return nil, false
	}

	return copyBytes(v.vals[i]), true
}

// Lookup returns the value bound to name.
//
// Names match exactly; there is no case folding.
func (v Values) Lookup(name string) (any, bool) {
	idx := slices.Index(v.names, name)
	if idx < 0 {
		return nil, false
	}

	return copyBytes(v.vals[idx]), true
}

// IsNull reports whether slot i holds an explicit null.
func (v Values) IsNull(i int) bool {
	val, ok := v.At(i)

	return ok && val == nil
}

// IsNullNamed reports whether name is bound to an explicit null.
func (v Values) IsNullNamed(name string) bool {
	val, ok := v.Lookup(name)

	return ok && val == nil
}

// Names returns a copy of the parameter names. It is nil unless v is named.
func (v Values) Names() []string {
	return slices.Clone(v.names)
}

// Slice returns a copy of the values in slot order. Byte slices are copied.
func (v Values) Slice() []any {
	if v.vals == nil {
		return nil
	}

	out := make([]any, len(v.vals))
	for i, val := range v.vals {
		out[i] = copyBytes(val)
	}

	return out
}

// Encode returns the transport form of the values.
//
// Positional values are returned in order with nulls as nil. Named values
// are returned as types.NamedValue entries. Unset markers pass through.
func (v Values) Encode() []any {
	if v.mode != Named {
		return slices.Clone(v.vals)
	}

	out := make([]any, len(v.vals))
	for i := range v.vals {
		out[i] = types.NamedValue{Name: v.names[i], Value: v.vals[i]}
	}

	return out
}

// normalize maps every null spelling to an untyped nil.
func normalize(v any) any {
	switch tv := v.(type) {
	case nil, nullValue, *nullValue:
		return nil
	case []byte:
		if tv == nil {
			return nil
		}

		return bytes.Clone(tv)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}

	return v
}

func copyBytes(v any) any {
	if b, ok := v.([]byte); ok {
		return bytes.Clone(b)
	}

	return v
}
